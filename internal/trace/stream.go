package trace

import (
	"io"
	"sync"
)

// StreamTracer writes each accepted event as it arrives.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	level  Level
	format Format
}

// NewStreamTracer writes events to w. w is not closed by Close.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return newStream(w, nil, level, format)
}

func newStream(w io.Writer, closer io.Closer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, closer: closer, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.accepts(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	// A failing trace sink must not stop the interpreter.
	_, _ = t.w.Write(FormatEvent(ev, t.format)) //nolint:errcheck
}

// Flush syncs the output when it is a file or a buffered writer.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch w := t.w.(type) {
	case interface{ Flush() error }:
		return w.Flush()
	case interface{ Sync() error }:
		if t.closer == nil {
			return nil
		}
		return w.Sync()
	}
	return nil
}

// Close flushes and closes a file opened by New.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
