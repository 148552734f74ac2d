package driver

import "time"

// Stage is the part of a file's lifecycle an Event belongs to.
type Stage uint8

const (
	StageLoad Stage = iota // read, then assemble or decode
	StageRun               // execute the entry command
)

func (s Stage) String() string {
	if s == StageRun {
		return "run"
	}
	return "load"
}

// Status is where a file stands within its stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

var statusNames = [...]string{"queued", "working", "done", "error"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Finished reports whether no further events follow for the file.
func (s Status) Finished() bool { return s == StatusDone || s == StatusError }

// Event reports that File entered Stage with Status. Elapsed is the
// duration of the stage once it ends.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink receives events. RunFiles calls OnEvent from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

// ChannelSink sends every event on Ch. A nil Ch drops them.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}
