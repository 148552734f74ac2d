package trace

import "errors"

// MultiTracer sends every event to several tracers. Each child filters by
// its own level.
type MultiTracer struct {
	children []Tracer
	level    Level
}

// NewMultiTracer fans out to tracers. level is reported by Level.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{children: tracers, level: level}
}

func (t *MultiTracer) Emit(ev *Event) {
	for _, c := range t.children {
		// Children assign their own sequence numbers.
		copied := *ev
		c.Emit(&copied)
	}
}

func (t *MultiTracer) Flush() error {
	var errs []error
	for _, c := range t.children {
		errs = append(errs, c.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	var errs []error
	for _, c := range t.children {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
