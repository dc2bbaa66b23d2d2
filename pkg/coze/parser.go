package coze

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/papercomputeco/cozeprox/pkg/sse"
)

// Event names emitted on the chat stream.
const (
	EventChatCreated    = "conversation.chat.created"
	EventChatInProgress = "conversation.chat.in_progress"
	EventMessageDelta   = "conversation.message.delta"
	EventChatCompleted  = "conversation.chat.completed"
	EventChatFailed     = "conversation.chat.failed"
	EventError          = "error"
	EventDone           = "done"
)

// terminalEvents are the events that announce the end of a chat, for
// better or worse. They are recorded, not acted on: the stream is consumed
// until the connection closes either way.
var terminalEvents = map[string]struct{}{
	EventChatCompleted: {},
	EventChatFailed:    {},
	EventError:         {},
	EventDone:          {},
}

// messageDelta is the part of a delta payload that carries reply text.
// Content is kept raw: it is a string in practice, but any non-empty value
// contributes its text.
type messageDelta struct {
	Content json.RawMessage `json:"content"`
}

// text renders the delta content. ok is false for absent, null, false, zero
// and empty string content, none of which add to the reply.
func (d messageDelta) text() (text string, ok bool, err error) {
	if len(d.Content) == 0 {
		return "", false, nil
	}

	var value any
	if err := json.Unmarshal(d.Content, &value); err != nil {
		return "", false, err
	}

	switch v := value.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, v != "", nil
	case bool:
		return "true", v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), v != 0, nil
	default:
		var compact bytes.Buffer
		if err := json.Compact(&compact, d.Content); err != nil {
			return "", false, err
		}
		return compact.String(), true, nil
	}
}

// LineResult is the outcome of one data line under the delta event: either a
// text Fragment or a parse Err, never both.
type LineResult struct {
	Fragment string
	Err      *ParseError
}

// StreamParser turns chat stream lines into reply fragments. It wraps the
// sse.Step reducer with the delta decoding rules and is not safe for
// concurrent use.
type StreamParser struct {
	state    sse.State
	line     int
	terminal string
}

// Feed consumes one line. It returns nil unless the line is a data line under
// the delta event with either non-empty content or an undecodable payload.
func (p *StreamParser) Feed(line string) *LineResult {
	p.line++

	next, field := sse.Step(p.state, line)
	if next.Event != p.state.Event {
		if _, ok := terminalEvents[next.Event]; ok {
			p.terminal = next.Event
		}
	}
	p.state = next

	if field == nil || field.Event != EventMessageDelta {
		return nil
	}

	var delta messageDelta
	if err := json.Unmarshal([]byte(field.Data), &delta); err != nil {
		return &LineResult{Err: &ParseError{Line: p.line, Data: field.Data, Err: err}}
	}

	text, ok, err := delta.text()
	if err != nil {
		return &LineResult{Err: &ParseError{Line: p.line, Data: field.Data, Err: err}}
	}
	if !ok {
		return nil
	}

	return &LineResult{Fragment: text}
}

// Terminal returns the last terminal event name seen, or "".
func (p *StreamParser) Terminal() string {
	return p.terminal
}
