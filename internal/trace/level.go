package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // nothing
	LevelError               // runtime errors only
	LevelPhase               // driver and run spans
	LevelDetail              // handler calls and returns
	LevelDebug               // every instruction
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// finest scope each level records; zero records no scope at all
var levelScopes = [...]Scope{
	LevelPhase:  ScopeRun,
	LevelDetail: ScopeHandler,
	LevelDebug:  ScopeInstr,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a level name to a Level. The empty string is off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for l, name := range levelNames {
		if name == s {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether spans and points of scope are recorded at
// level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelScopes) {
		return false
	}
	return scope != 0 && scope <= levelScopes[l]
}

// accepts reports whether a tracer at level l stores ev. Heartbeats pass
// whenever tracing is on.
func (l Level) accepts(ev *Event) bool {
	switch {
	case l == LevelOff:
		return false
	case ev.Kind == KindHeartbeat, ev.Kind == KindError:
		return true
	default:
		return l.ShouldEmit(ev.Scope)
	}
}
