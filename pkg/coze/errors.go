package coze

import (
	"errors"
	"fmt"
)

// ErrMissingConversationID is returned when conversation creation succeeds
// at the HTTP level but the response carries no data.id.
var ErrMissingConversationID = errors.New("conversation id not found in response")

// StatusError reports a non-success HTTP status from the upstream.
type StatusError struct {
	// Op names the call that failed, e.g. "create conversation".
	Op         string
	StatusCode int

	// Body is the upstream response body when it was read. The chat call
	// never reads it.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// ConversationError marks a failure to create the conversation a message
// would have been sent to.
type ConversationError struct {
	Err error
}

func (e *ConversationError) Error() string {
	return "creating conversation: " + e.Err.Error()
}

func (e *ConversationError) Unwrap() error {
	return e.Err
}

// ParseError describes a delta payload that could not be decoded. It never
// aborts the stream.
type ParseError struct {
	// Line is the 1-based line number within the response body.
	Line int
	Data string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: decoding delta payload: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
