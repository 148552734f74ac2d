package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1 // an operation starts
	KindSpanEnd                   // an operation ends
	KindPoint                     // an instant event
	KindHeartbeat                 // periodic liveness signal
	KindError                     // a failure, recorded from LevelError up
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
	KindError:     "error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	// ScopeDriver covers the tools: loading files, running a batch.
	ScopeDriver Scope = iota + 1
	// ScopeRun covers one context running one entry handler.
	ScopeRun
	// ScopeHandler covers handler calls and returns inside a run.
	ScopeHandler
	// ScopeInstr is a single instruction.
	ScopeInstr
)

var scopeNames = [...]string{
	ScopeDriver:  "driver",
	ScopeRun:     "run",
	ScopeHandler: "handler",
	ScopeInstr:   "instr",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	GID      uint64 // goroutine that emitted the event
	Name     string // "run main", "call", "file prog.leoasm"
	Detail   string
	Extra    map[string]string
}
