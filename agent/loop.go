package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/formloop/formloop/llm"
)

// DefaultMaxIterations bounds completion/tool-execution cycles when Config
// leaves MaxIterations unset.
const DefaultMaxIterations = 10

// DefaultNudge is the continuation message attached after each tool round
// when Config leaves Nudge unset.
const DefaultNudge = "Continue with the remaining steps. Don't ask for confirmation - just proceed."

// Completer issues chat completions. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Config controls a Loop.
type Config struct {
	// Model and Provider select the completion backend.
	Model    string
	Provider string

	// SystemPrompt seeds each run's transcript. Empty means no system
	// message.
	SystemPrompt string

	// MaxIterations caps completion/tool-execution cycles per run. Zero
	// means DefaultMaxIterations.
	MaxIterations int

	// Nudge is the synthetic user message attached to every completion
	// request that follows a tool round. It rides on the request only and
	// is never stored in the transcript. Empty means DefaultNudge.
	Nudge string

	Temperature *float64
	MaxTokens   *int

	// EventBuffer sizes the event channel. Zero means 256.
	EventBuffer int

	// Logger receives loop diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// RunResult is the outcome of one run.
type RunResult struct {
	// Output is the run's final text.
	Output string

	// Iterations counts completion requests that carried the tool schema.
	Iterations int

	// ToolCalls counts tool invocations executed during the run.
	ToolCalls int

	// CapReached reports that the run halted at MaxIterations while the
	// model was still requesting tools.
	CapReached bool

	// Usage aggregates token usage across every completion in the run.
	Usage llm.Usage

	// Transcript is the conversation as it stood when the run ended.
	Transcript []llm.Message
}

// loopState is the per-run iteration state. It is created when a run
// starts, passed through each transition, and discarded when the run ends;
// nothing persists across runs.
type loopState struct {
	iteration     int
	cap           int
	toolCalls     int
	lastAssistant llm.Message
}

// Loop drives a bounded tool-calling conversation: it sends the transcript
// to the model, executes requested tools through the session strictly in
// the order the model produced them, feeds normalized results back, and
// repeats until the model stops requesting tools or the iteration cap is
// hit.
type Loop struct {
	client  Completer
	session ToolSession
	config  Config
	emitter *EventEmitter
	logger  *slog.Logger
	nudge   string
}

// NewLoop creates a loop over a completion client and a tool session. The
// session must already be started; the loop does not own it and never
// closes it.
func NewLoop(client Completer, session ToolSession, config Config) *Loop {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultMaxIterations
	}
	if config.Model == "" {
		config.Model = llm.DefaultModel
	}
	nudge := config.Nudge
	if nudge == "" {
		nudge = DefaultNudge
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		client:  client,
		session: session,
		config:  config,
		emitter: NewEventEmitter(config.EventBuffer),
		logger:  logger,
		nudge:   nudge,
	}
}

// Events returns the loop's event channel.
func (l *Loop) Events() <-chan Event {
	return l.emitter.Events()
}

// Close closes the event channel. Call it once no more runs will happen.
func (l *Loop) Close() {
	l.emitter.Close()
}

// Run executes one conversation for the given user input and returns the
// final text along with run statistics.
//
// Each run seeds a fresh transcript, fetches the tool catalog exactly
// once, and then cycles: completion, execute the requested tools in model
// order, append results, repeat. A response without tool calls ends the
// cycle. If at least one tool round happened, a single finalization
// completion with no tool schema produces the reported output; otherwise
// the first response's text is the output directly.
func (l *Loop) Run(ctx context.Context, userInput string) (*RunResult, error) {
	l.emitter.SetRunID(uuid.New().String())
	l.emitter.Emit(EventRunStart, map[string]any{"input": userInput})

	descriptors, err := FetchCatalog(ctx, l.session)
	if err != nil {
		l.emitter.Emit(EventError, map[string]any{"error": err.Error()})
		return nil, err
	}
	tools := FunctionSchemas(descriptors)

	transcript := NewTranscript(l.config.SystemPrompt, userInput)
	state := &loopState{cap: l.config.MaxIterations}
	var usage llm.Usage

	for {
		if state.iteration >= state.cap {
			// Not an error: halt and report partial progress.
			l.emitter.Emit(EventIterationCap, map[string]any{
				"iterations": state.iteration,
				"last_text":  state.lastAssistant.Content,
			})
			return l.finalize(ctx, transcript, state, usage, true)
		}

		select {
		case <-ctx.Done():
			l.emitter.Emit(EventError, map[string]any{"error": ctx.Err().Error()})
			return nil, ctx.Err()
		default:
		}

		req := l.completionRequest(transcript, tools, state.iteration > 0)
		state.iteration++

		l.emitter.Emit(EventCompletionStart, map[string]any{"iteration": state.iteration})
		l.logger.Debug("completion round", "iteration", state.iteration, "messages", transcript.Len())
		resp, err := l.client.Complete(ctx, req)
		if err != nil {
			l.emitter.Emit(EventError, map[string]any{"error": err.Error()})
			return nil, fmt.Errorf("completion %d: %w", state.iteration, err)
		}
		usage = usage.Add(resp.Usage)
		state.lastAssistant = resp.Message

		calls := resp.ToolCalls()
		l.emitter.Emit(EventCompletionEnd, map[string]any{
			"iteration":  state.iteration,
			"text":       resp.Text(),
			"tool_calls": len(calls),
		})

		if len(calls) == 0 {
			if state.iteration == 1 {
				// The model answered outright; its text is the output and
				// no finalization happens.
				if err := transcript.AppendAssistantText(resp.Text()); err != nil {
					return nil, err
				}
				result := &RunResult{
					Output:     resp.Text(),
					Iterations: state.iteration,
					Usage:      usage,
					Transcript: transcript.Messages(),
				}
				l.emitter.Emit(EventRunEnd, map[string]any{"iterations": state.iteration, "tool_calls": 0})
				l.logger.Info("run complete",
					"iterations", state.iteration,
					"tool_calls", 0,
					"cap_reached", false,
					"total_tokens", usage.TotalTokens,
				)
				return result, nil
			}
			// Tool rounds happened; this response is dropped and the
			// clean summary comes from the finalization call.
			return l.finalize(ctx, transcript, state, usage, false)
		}

		if err := transcript.AppendAssistant(resp.Message); err != nil {
			return nil, err
		}

		// Strictly sequential, in the order the model produced them. Tool
		// side effects are order-dependent.
		for _, call := range calls {
			content := l.executeToolCall(ctx, call)
			state.toolCalls++
			if err := transcript.AppendToolResult(call.ID, content); err != nil {
				return nil, err
			}
		}
	}
}

// finalize issues the single no-tools completion that produces the run's
// reported output after tool rounds.
func (l *Loop) finalize(ctx context.Context, transcript *Transcript, state *loopState, usage llm.Usage, capReached bool) (*RunResult, error) {
	l.emitter.Emit(EventFinalization, map[string]any{"iterations": state.iteration})

	resp, err := l.client.Complete(ctx, l.completionRequest(transcript, nil, false))
	if err != nil {
		l.emitter.Emit(EventError, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("finalization: %w", err)
	}
	usage = usage.Add(resp.Usage)

	if err := transcript.AppendAssistantText(resp.Text()); err != nil {
		return nil, err
	}

	result := &RunResult{
		Output:     resp.Text(),
		Iterations: state.iteration,
		ToolCalls:  state.toolCalls,
		CapReached: capReached,
		Usage:      usage,
		Transcript: transcript.Messages(),
	}
	l.emitter.Emit(EventRunEnd, map[string]any{
		"iterations":  state.iteration,
		"tool_calls":  state.toolCalls,
		"cap_reached": capReached,
	})
	l.logger.Info("run complete",
		"iterations", state.iteration,
		"tool_calls", state.toolCalls,
		"cap_reached", capReached,
		"total_tokens", usage.TotalTokens,
	)
	return result, nil
}

// completionRequest assembles one request. The nudge, when attached, is a
// one-shot addition to this request; the transcript itself is unchanged.
func (l *Loop) completionRequest(transcript *Transcript, tools []llm.ToolDefinition, nudged bool) llm.Request {
	messages := transcript.Messages()
	if nudged {
		messages = append(messages, llm.UserMessage(l.nudge))
		l.emitter.Emit(EventNudge, map[string]any{"message": l.nudge})
	}

	req := llm.Request{
		Model:       l.config.Model,
		Provider:    l.config.Provider,
		Messages:    messages,
		Temperature: l.config.Temperature,
		MaxTokens:   l.config.MaxTokens,
	}
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = llm.ToolChoiceAuto
	}
	return req
}

// executeToolCall invokes one tool and returns the content for its tool
// message. Failures are reported back to the model as text, not raised.
func (l *Loop) executeToolCall(ctx context.Context, call llm.ToolCall) string {
	l.emitter.Emit(EventToolCallStart, map[string]any{
		"tool":      call.Name,
		"call_id":   call.ID,
		"arguments": string(call.Arguments),
	})

	args, ok := parseArguments(call.Arguments)
	if !ok {
		l.emitter.Emit(EventWarning, map[string]any{
			"message": fmt.Sprintf("arguments for %s did not parse; substituting an empty set", call.Name),
		})
		l.logger.Warn("tool arguments did not parse; substituting an empty set", "tool", call.Name)
	}

	result, err := l.session.CallTool(ctx, call.Name, args)
	if err != nil {
		content := "Error: " + err.Error()
		l.emitter.Emit(EventToolCallEnd, map[string]any{
			"tool":    call.Name,
			"call_id": call.ID,
			"error":   content,
		})
		return content
	}

	content := ResultText(result)
	if result.IsError {
		content = "Error: " + content
		l.emitter.Emit(EventToolCallEnd, map[string]any{
			"tool":    call.Name,
			"call_id": call.ID,
			"error":   content,
		})
		return content
	}

	l.emitter.Emit(EventToolCallEnd, map[string]any{
		"tool":    call.Name,
		"call_id": call.ID,
		"output":  content,
	})
	return content
}
