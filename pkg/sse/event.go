// Package sse provides a small, line-oriented reader for the event streams
// returned by the Coze chat API.
//
// The upstream stream is a sequence of "event: <name>" and "data: <payload>"
// lines. Unlike a browser EventSource, a data line is acted upon as soon as it
// is read: it is paired with the most recent event name and emitted, without
// waiting for a blank dispatch line. Blank lines do not reset the event name.
//
// Step is the pure reducer driving the parse; LineReader produces its input.
package sse

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

// State is the parser state carried between lines.
//
// The zero value is the AwaitingEvent state. Once an "event:" line has been
// read, Event holds its trimmed name and subsequent data lines are attributed
// to it until the next "event:" line.
type State struct {
	Event string
}

// AwaitingEvent reports whether no event name is currently set.
func (s State) AwaitingEvent() bool {
	return s.Event == ""
}

// Field is a data payload paired with the event name it was read under.
type Field struct {
	Event string
	Data  string
}
