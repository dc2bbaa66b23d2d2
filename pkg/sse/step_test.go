package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// run feeds every line through Step and collects the emitted fields.
func run(lines ...string) (State, []Field) {
	var (
		s      State
		fields []Field
	)
	for _, line := range lines {
		var f *Field
		s, f = Step(s, line)
		if f != nil {
			fields = append(fields, *f)
		}
	}
	return s, fields
}

var _ = Describe("Step", func() {
	It("starts out awaiting an event", func() {
		Expect(State{}.AwaitingEvent()).To(BeTrue())
	})

	It("sets the event name from an event line", func() {
		s, f := Step(State{}, "event: conversation.message.delta")
		Expect(f).To(BeNil())
		Expect(s.Event).To(Equal("conversation.message.delta"))
		Expect(s.AwaitingEvent()).To(BeFalse())
	})

	It("trims surrounding whitespace from the event name", func() {
		s, _ := Step(State{}, "event:\t  done  ")
		Expect(s.Event).To(Equal("done"))
	})

	It("pairs a data line with the current event", func() {
		s, fields := run("event: conversation.message.delta", `data: {"content":"A"}`)
		Expect(s.Event).To(Equal("conversation.message.delta"))
		Expect(fields).To(Equal([]Field{{Event: "conversation.message.delta", Data: `{"content":"A"}`}}))
	})

	It("accepts data lines with no space after the colon", func() {
		_, fields := run("event:x", "data:payload")
		Expect(fields).To(Equal([]Field{{Event: "x", Data: "payload"}}))
	})

	It("emits data lines read before any event with an empty event name", func() {
		_, fields := run("data: orphan")
		Expect(fields).To(Equal([]Field{{Event: "", Data: "orphan"}}))
	})

	It("keeps the event name across blank lines and repeated data lines", func() {
		_, fields := run("event: e", "data: 1", "", "data: 2")
		Expect(fields).To(Equal([]Field{{Event: "e", Data: "1"}, {Event: "e", Data: "2"}}))
	})

	It("switches to the latest event name", func() {
		_, fields := run("event: a", "data: 1", "event: b", "data: 2")
		Expect(fields).To(Equal([]Field{{Event: "a", Data: "1"}, {Event: "b", Data: "2"}}))
	})

	It("returns to awaiting when an event line has no name", func() {
		s, _ := run("event: a", "event:")
		Expect(s.AwaitingEvent()).To(BeTrue())
	})

	It("ignores lines that match neither prefix", func() {
		s, fields := run("event: a", ": keep-alive", "id: 7", "retry: 10", "  data: indented", "")
		Expect(fields).To(BeEmpty())
		Expect(s.Event).To(Equal("a"))
	})
})
