package llm

import (
	"encoding/json"
)

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-initiated tool invocation. IDs are generated by the
// model endpoint and are unique within a run. Arguments is the raw payload
// exactly as the model produced it; callers decide how to parse it.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is the fundamental unit of conversation. The Role tag determines
// which fields are meaningful; use the constructors below rather than
// building messages by hand so that each role carries only its valid fields.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set only on assistant messages that request invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID is set only on tool messages and names the call answered.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant Message with text content only.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// AssistantToolCallMessage creates an assistant Message carrying tool
// invocation requests. Content may be empty; models frequently return
// tool calls without accompanying text.
func AssistantToolCallMessage(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolMessage creates a tool Message answering the given call id.
func ToolMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// HasToolCalls reports whether the message requests any tool invocations.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// ToolChoice controls whether the model may call tools.
type ToolChoice string

const (
	// ToolChoiceAuto leaves tool selection to the model.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone forbids tool calls for the request.
	ToolChoiceNone ToolChoice = "none"
)

// ToolDefinition describes one callable function in the form the model
// endpoint consumes: a name, a description, and a JSON-Schema parameter
// object. Description and Parameters are always non-nil in well-formed
// definitions; see agent.FunctionSchema for the defaulting rules.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the input to Complete. Messages are sent verbatim in order.
type Request struct {
	Model       string           `json:"model"`
	Messages    []Message        `json:"messages"`
	Provider    string           `json:"provider,omitempty"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	ToolChoice  ToolChoice       `json:"tool_choice,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	MaxTokens   *int             `json:"max_tokens,omitempty"`
}

// FinishReason describes why generation stopped.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishToolCalls FinishReason = "tool_calls"
	FinishLength    FinishReason = "length"
	FinishFiltered  FinishReason = "content_filter"
	FinishOther     FinishReason = "other"
)

// Usage tracks token consumption for a single completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add returns a new Usage that is the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
		TotalTokens:  u.TotalTokens + other.TotalTokens,
	}
}

// Response is the output of Complete: a single choice with optional text
// and an ordered sequence of zero or more tool calls.
type Response struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	Provider     string       `json:"provider"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`
	Usage        Usage        `json:"usage"`
}

// Text returns the response message's text content.
func (r Response) Text() string {
	return r.Message.Content
}

// ToolCalls returns the tool invocations requested by the response, in the
// order the model produced them.
func (r Response) ToolCalls() []ToolCall {
	return r.Message.ToolCalls
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }
