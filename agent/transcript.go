package agent

import (
	"errors"
	"fmt"

	"github.com/formloop/formloop/llm"
)

// ErrUnansweredToolCalls reports an append that would leave requested tool
// calls without their results.
var ErrUnansweredToolCalls = errors.New("agent: transcript has unanswered tool calls")

// Transcript is the ordered conversation sent verbatim to the model on
// every completion. It is append-only and enforces that every tool call an
// assistant message requests is answered, in order, before the conversation
// moves on.
type Transcript struct {
	messages []llm.Message
	pending  []string
}

// NewTranscript seeds a transcript with the system instruction and the
// user's request. An empty system string is omitted.
func NewTranscript(system, user string) *Transcript {
	t := &Transcript{}
	if system != "" {
		t.messages = append(t.messages, llm.SystemMessage(system))
	}
	t.messages = append(t.messages, llm.UserMessage(user))
	return t
}

// Messages returns a copy of the transcript in order.
func (t *Transcript) Messages() []llm.Message {
	out := make([]llm.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages in the transcript.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Pending returns the ids of tool calls still awaiting results.
func (t *Transcript) Pending() []string {
	out := make([]string, len(t.pending))
	copy(out, t.pending)
	return out
}

// AppendAssistant records an assistant message. Its tool calls, if any,
// become pending and must all be answered before the next append.
func (t *Transcript) AppendAssistant(msg llm.Message) error {
	if len(t.pending) > 0 {
		return ErrUnansweredToolCalls
	}
	if msg.Role != llm.RoleAssistant {
		return fmt.Errorf("agent: expected assistant message, got role %q", msg.Role)
	}
	t.messages = append(t.messages, msg)
	for _, call := range msg.ToolCalls {
		t.pending = append(t.pending, call.ID)
	}
	return nil
}

// AppendAssistantText records a plain assistant message with no tool calls.
func (t *Transcript) AppendAssistantText(text string) error {
	return t.AppendAssistant(llm.AssistantMessage(text))
}

// AppendToolResult answers the oldest pending tool call. Results must
// arrive in the order the calls were issued.
func (t *Transcript) AppendToolResult(callID, content string) error {
	if len(t.pending) == 0 {
		return fmt.Errorf("agent: tool result %q answers no pending call", callID)
	}
	if t.pending[0] != callID {
		return fmt.Errorf("agent: tool result %q out of order, expected %q", callID, t.pending[0])
	}
	t.pending = t.pending[1:]
	t.messages = append(t.messages, llm.ToolMessage(callID, content))
	return nil
}
