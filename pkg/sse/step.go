package sse

import "strings"

// Step advances the parser by one line. It returns the next state and, for a
// "data:" line, the emitted Field. Every other line leaves the state untouched
// and emits nothing.
//
// Both the event name and the data payload are whitespace-trimmed.
func Step(s State, line string) (State, *Field) {
	switch {
	case strings.HasPrefix(line, eventPrefix):
		return State{Event: strings.TrimSpace(line[len(eventPrefix):])}, nil
	case strings.HasPrefix(line, dataPrefix):
		return s, &Field{
			Event: s.Event,
			Data:  strings.TrimSpace(line[len(dataPrefix):]),
		}
	default:
		return s, nil
	}
}
