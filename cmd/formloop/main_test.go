package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/formloop/formloop/agent"
	"github.com/formloop/formloop/config"
	"github.com/formloop/formloop/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReadRequestFromArgs(t *testing.T) {
	request, err := readRequest(
		[]string{"Title:", "Quiz", "|", "Questions:", "What is Go?"},
		strings.NewReader(""),
		io.Discard,
	)
	if err != nil {
		t.Fatalf("readRequest() error: %v", err)
	}
	if request != "Title: Quiz | Questions: What is Go?" {
		t.Errorf("request = %q", request)
	}
}

func TestReadRequestFromArgsRejectsBlank(t *testing.T) {
	if _, err := readRequest([]string{"  ", ""}, strings.NewReader(""), io.Discard); err == nil {
		t.Fatal("readRequest() accepted blank arguments")
	}
}

func TestReadRequestInteractive(t *testing.T) {
	var out bytes.Buffer
	request, err := readRequest(nil, strings.NewReader("Title: Quiz | Questions: Q1\n"), &out)
	if err != nil {
		t.Fatalf("readRequest() error: %v", err)
	}
	if request != "Title: Quiz | Questions: Q1" {
		t.Errorf("request = %q", request)
	}

	prompt := out.String()
	if !strings.Contains(prompt, "=== Google Forms Creator ===") {
		t.Error("banner not printed")
	}
	if !strings.Contains(prompt, "Enter your form request: ") {
		t.Error("input prompt not printed")
	}
}

func TestReadRequestInteractiveWithoutTrailingNewline(t *testing.T) {
	request, err := readRequest(nil, strings.NewReader("Title: Quiz"), io.Discard)
	if err != nil {
		t.Fatalf("readRequest() error: %v", err)
	}
	if request != "Title: Quiz" {
		t.Errorf("request = %q", request)
	}
}

func TestReadRequestInteractiveRejectsEmpty(t *testing.T) {
	for _, input := range []string{"", "\n", "   \n"} {
		if _, err := readRequest(nil, strings.NewReader(input), io.Discard); err == nil {
			t.Errorf("readRequest() accepted input %q", input)
		}
	}
}

func TestConsumeEventsRendersProgress(t *testing.T) {
	events := make(chan agent.Event, 16)
	events <- agent.Event{Kind: agent.EventCompletionStart, Data: map[string]any{"iteration": 1}}
	events <- agent.Event{Kind: agent.EventCompletionEnd, Data: map[string]any{"iteration": 1, "text": "Creating the form now.", "tool_calls": 1}}
	events <- agent.Event{Kind: agent.EventToolCallStart, Data: map[string]any{"tool": "create_form", "call_id": "call_1", "arguments": `{"title":"Quiz"}`}}
	events <- agent.Event{Kind: agent.EventToolCallEnd, Data: map[string]any{"tool": "create_form", "call_id": "call_1", "output": "Form created with ID: form_123"}}
	events <- agent.Event{Kind: agent.EventFinalization, Data: map[string]any{"iterations": 2}}
	close(events)

	var out bytes.Buffer
	consumeEvents(events, &out, discardLogger())

	got := out.String()
	for _, want := range []string{
		"--- Iteration 1 ---",
		"Assistant: Creating the form now.",
		`[Executing tool] create_form({"title":"Quiz"})`,
		"Tool result: Form created with ID: form_123",
		"--- Completed after 2 iterations ---",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestConsumeEventsRendersToolFailure(t *testing.T) {
	events := make(chan agent.Event, 4)
	events <- agent.Event{Kind: agent.EventToolCallEnd, Data: map[string]any{"tool": "add_question", "call_id": "call_2", "error": "Error: form storage unavailable"}}
	close(events)

	var out bytes.Buffer
	consumeEvents(events, &out, discardLogger())

	if !strings.Contains(out.String(), "Tool result: Error: form storage unavailable") {
		t.Errorf("output = %q", out.String())
	}
}

func TestConsumeEventsSilentOnEmptyAssistantText(t *testing.T) {
	events := make(chan agent.Event, 4)
	events <- agent.Event{Kind: agent.EventCompletionEnd, Data: map[string]any{"iteration": 1, "text": "", "tool_calls": 2}}
	close(events)

	var out bytes.Buffer
	consumeEvents(events, &out, discardLogger())

	if strings.Contains(out.String(), "Assistant:") {
		t.Errorf("empty assistant text was printed: %q", out.String())
	}
}

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{LogFormat: "json", LogLevel: "info"})
	logger.Info("hello", "key", "value")

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("json format produced %q", line)
	}
	if !strings.Contains(line, `"msg":"hello"`) {
		t.Errorf("log line missing message: %q", line)
	}
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{LogFormat: "text", LogLevel: "error"})
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at error level: %q", buf.String())
	}

	logger.Error("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("error line missing: %q", buf.String())
	}
}

func TestBuildClientOpenAI(t *testing.T) {
	client, err := buildClient(config.Config{
		Provider:     "openai",
		OpenAIAPIKey: "sk-test",
		Temperature:  0.2,
	}, discardLogger())
	if err != nil {
		t.Fatalf("buildClient() error: %v", err)
	}
	defer client.Close()
}

func TestBuildClientRequiresAPIKey(t *testing.T) {
	if _, err := buildClient(config.Config{Provider: "openai"}, discardLogger()); err == nil {
		t.Fatal("buildClient() accepted an empty API key")
	}
}

func TestRetryMiddlewareStopsOnNonRetryable(t *testing.T) {
	mw := retryMiddleware(discardLogger())

	authErr := &llm.AuthenticationError{ProviderError: llm.ProviderError{
		ClientError: llm.ClientError{Message: "bad key"},
		Provider:    "openai",
		StatusCode:  401,
	}}

	calls := 0
	_, err := mw(context.Background(), llm.Request{Model: "gpt-4o"}, func(ctx context.Context, r llm.Request) (*llm.Response, error) {
		calls++
		return nil, authErr
	})
	if err != authErr {
		t.Fatalf("err = %v, want the auth error", err)
	}
	if calls != 1 {
		t.Errorf("next called %d times, want 1", calls)
	}
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	mw := loggingMiddleware(discardLogger())

	want := &llm.Response{
		Message: llm.AssistantMessage("done"),
		Usage:   llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
	resp, err := mw(context.Background(), llm.Request{Model: "gpt-4o"}, func(ctx context.Context, r llm.Request) (*llm.Response, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if resp != want {
		t.Error("response was not passed through unchanged")
	}
}
