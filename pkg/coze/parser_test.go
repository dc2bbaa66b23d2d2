package coze_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/cozeprox/pkg/coze"
)

// feed runs lines through a fresh parser and returns the fragments and
// parse errors it produced.
func feed(lines ...string) (*coze.StreamParser, []string, []*coze.ParseError) {
	p := &coze.StreamParser{}
	var (
		fragments []string
		errs      []*coze.ParseError
	)
	for _, line := range lines {
		res := p.Feed(line)
		if res == nil {
			continue
		}
		if res.Err != nil {
			errs = append(errs, res.Err)
			continue
		}
		fragments = append(fragments, res.Fragment)
	}
	return p, fragments, errs
}

var _ = Describe("StreamParser", func() {
	It("emits delta contents in arrival order around unrelated events", func() {
		_, fragments, errs := feed(
			"event: conversation.chat.created",
			`data: {"id":"chat-1"}`,
			"event: conversation.message.delta",
			`data: {"content":"A"}`,
			"",
			"event: conversation.chat.in_progress",
			`data: {"content":"not me"}`,
			"event: conversation.message.delta",
			`data: {"content":"B"}`,
			`data: {"content":"C"}`,
		)
		Expect(errs).To(BeEmpty())
		Expect(fragments).To(Equal([]string{"A", "B", "C"}))
	})

	It("keeps duplicate fragments", func() {
		_, fragments, _ := feed(
			"event: conversation.message.delta",
			`data: {"content":"ha"}`,
			`data: {"content":"ha"}`,
		)
		Expect(fragments).To(Equal([]string{"ha", "ha"}))
	})

	It("reports malformed delta payloads without stopping", func() {
		_, fragments, errs := feed(
			"event: conversation.message.delta",
			`data: {"content":"A"}`,
			`data: {"content":`,
			`data: {"content":"B"}`,
		)
		Expect(fragments).To(Equal([]string{"A", "B"}))
		Expect(errs).To(HaveLen(1))
		Expect(errs[0].Line).To(Equal(3))
		Expect(errs[0].Data).To(Equal(`{"content":`))

		var syntaxErr *json.SyntaxError
		Expect(errs[0]).To(MatchError(ContainSubstring("line 3")))
		Expect(errs[0].Err).To(BeAssignableToTypeOf(syntaxErr))
	})

	It("skips deltas without content", func() {
		_, fragments, errs := feed(
			"event: conversation.message.delta",
			`data: {"role":"assistant"}`,
			`data: {"content":""}`,
			`data: null`,
		)
		Expect(fragments).To(BeEmpty())
		Expect(errs).To(BeEmpty())
	})

	It("renders non-string content that is present", func() {
		_, fragments, errs := feed(
			"event: conversation.message.delta",
			`data: {"content":5}`,
			`data: {"content":1.5}`,
			`data: {"content":true}`,
			`data: {"content":{"a": 1}}`,
			`data: {"content":["x"]}`,
		)
		Expect(errs).To(BeEmpty())
		Expect(fragments).To(Equal([]string{"5", "1.5", "true", `{"a":1}`, `["x"]`}))
	})

	It("skips null, false and zero content", func() {
		_, fragments, errs := feed(
			"event: conversation.message.delta",
			`data: {"content":null}`,
			`data: {"content":false}`,
			`data: {"content":0}`,
		)
		Expect(fragments).To(BeEmpty())
		Expect(errs).To(BeEmpty())
	})

	It("does not decode data under other events", func() {
		_, fragments, errs := feed(
			"event: done",
			`data: "[DONE]"`,
			"event: conversation.message.completed",
			`data: not json`,
		)
		Expect(fragments).To(BeEmpty())
		Expect(errs).To(BeEmpty())
	})

	It("records the last terminal event", func() {
		p, _, _ := feed(
			"event: conversation.message.delta",
			`data: {"content":"A"}`,
			"event: conversation.chat.completed",
			`data: {}`,
			"event: done",
			`data: "[DONE]"`,
		)
		Expect(p.Terminal()).To(Equal(coze.EventDone))
	})

	It("has no terminal event for a stream cut short", func() {
		p, _, _ := feed(
			"event: conversation.chat.in_progress",
			"event: conversation.message.delta",
			`data: {"content":"A"}`,
		)
		Expect(p.Terminal()).To(BeEmpty())
	})
})
