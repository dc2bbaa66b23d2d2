package chatcmder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/cozeprox/pkg/config"
	"github.com/papercomputeco/cozeprox/pkg/coze"
	cozelogger "github.com/papercomputeco/cozeprox/pkg/logger"
)

type sentMessage struct {
	conversationID string
	content        string
}

// fakeClient records calls and replies with "echo: <content>".
type fakeClient struct {
	creates   int
	sent      []sentMessage
	createErr error
	sendErr   map[string]error
}

func (f *fakeClient) CreateConversation(context.Context) (string, error) {
	f.creates++
	if f.createErr != nil {
		return "", f.createErr
	}
	return "conv-1", nil
}

func (f *fakeClient) SendMessage(_ context.Context, conversationID string, msg coze.Message, _ ...coze.SendOption) (*coze.Reply, error) {
	f.sent = append(f.sent, sentMessage{conversationID: conversationID, content: msg.Content})
	if err := f.sendErr[msg.Content]; err != nil {
		return nil, err
	}
	return &coze.Reply{ConversationID: conversationID, Content: "echo: " + msg.Content}, nil
}

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		Expect(NewChatCmd().Use).To(Equal("chat [message]"))
	})

	It("has the credential and output flags", func() {
		cmd := NewChatCmd()
		for _, name := range []string{"api-key", "bot-id", "user-id", "timeout", "raw", "plain"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), "missing flag %s", name)
		}
	})
})

var _ = Describe("chatCommander", func() {
	var (
		client *fakeClient
		out    *bytes.Buffer
		errOut *bytes.Buffer
		cmder  *chatCommander
		ctx    context.Context
	)

	newCommander := func(in io.Reader) *chatCommander {
		return &chatCommander{
			cfg:    config.NewDefaultConfig(),
			client: client,
			logger: cozelogger.Nop(),
			in:     in,
			out:    out,
			errOut: errOut,
		}
	}

	BeforeEach(func() {
		client = &fakeClient{sendErr: map[string]error{}}
		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
		ctx = context.Background()
	})

	Describe("once", func() {
		It("creates a conversation and prints the reply", func() {
			cmder = newCommander(strings.NewReader(""))

			Expect(cmder.once(ctx, "你好")).To(Succeed())
			Expect(client.creates).To(Equal(1))
			Expect(client.sent).To(Equal([]sentMessage{{conversationID: "conv-1", content: "你好"}}))
			Expect(out.String()).To(Equal("echo: 你好\n"))
		})

		It("stops when the conversation cannot be created", func() {
			client.createErr = &coze.StatusError{Op: "create conversation", StatusCode: 401}
			cmder = newCommander(strings.NewReader(""))

			err := cmder.once(ctx, "hi")
			Expect(err).To(MatchError(ContainSubstring("creating conversation")))
			Expect(client.sent).To(BeEmpty())
		})

		It("rejects a blank message without calling upstream", func() {
			cmder = newCommander(strings.NewReader(""))

			Expect(cmder.once(ctx, "  ")).To(MatchError("message is empty"))
			Expect(client.creates).To(BeZero())
		})
	})

	Describe("interactive", func() {
		It("reuses one conversation for every message", func() {
			cmder = newCommander(strings.NewReader("first\n\nsecond\n"))

			Expect(cmder.interactive(ctx)).To(Succeed())
			Expect(client.creates).To(Equal(1))
			Expect(client.sent).To(Equal([]sentMessage{
				{conversationID: "conv-1", content: "first"},
				{conversationID: "conv-1", content: "second"},
			}))
			Expect(out.String()).To(ContainSubstring("echo: first"))
			Expect(out.String()).To(ContainSubstring("echo: second"))
		})

		It("stops at /exit", func() {
			cmder = newCommander(strings.NewReader("first\n/exit\nnever\n"))

			Expect(cmder.interactive(ctx)).To(Succeed())
			Expect(client.sent).To(HaveLen(1))
		})

		It("keeps going after a failed message", func() {
			client.sendErr["bad"] = errors.New("chat: unexpected status 502")
			cmder = newCommander(strings.NewReader("bad\ngood\n"))

			Expect(cmder.interactive(ctx)).To(Succeed())
			Expect(client.sent).To(HaveLen(2))
			Expect(errOut.String()).To(ContainSubstring("unexpected status 502"))
			Expect(out.String()).To(ContainSubstring("echo: good"))
		})
	})
})
