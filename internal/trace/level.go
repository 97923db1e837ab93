package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff       Level = iota // no tracing
	LevelRun                    // run boundaries only
	LevelStage                  // + scan/generate/write stages
	LevelContainer              // + one span per container
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelRun:
		return "run"
	case LevelStage:
		return "stage"
	case LevelContainer:
		return "container"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "run":
		return LevelRun, nil
	case "stage":
		return LevelStage, nil
	case "container", "debug":
		return LevelContainer, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|run|stage|container)", s)
	}
}

// ShouldEmit returns true if the given scope should emit at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if l == LevelOff {
		return false
	}
	return uint8(scope) <= uint8(l)
}
