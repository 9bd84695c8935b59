// Command formloop turns a natural-language request into a Google Form. It
// connects to the forms MCP server, hands the server's tool catalog to the
// model, and executes the requested tool calls until the form is complete.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/formloop/formloop/agent"
	"github.com/formloop/formloop/config"
	"github.com/formloop/formloop/llm"
	"github.com/formloop/formloop/mcpclient"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	request, err := readRequest(args, stdin, stdout)
	if err != nil {
		return err
	}

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	session := mcpclient.New(cfg.MCPServer)
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("closing MCP session", "err", err)
		}
	}()

	loop := agent.NewLoop(client, session, agent.Config{
		Model:         cfg.Model,
		Provider:      cfg.Provider,
		SystemPrompt:  systemPrompt,
		MaxIterations: cfg.MaxIterations,
		Nudge:         formsNudge,
		Temperature:   &cfg.Temperature,
		Logger:        logger,
	})

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		consumeEvents(loop.Events(), stdout, logger)
	}()
	defer func() {
		loop.Close()
		<-drained
	}()

	fmt.Fprintf(stdout, "\nProcessing: %s\n", request)
	fmt.Fprintln(stdout, strings.Repeat("=", 50))

	result, err := loop.Run(ctx, request)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\nFinal response: %s\n", result.Output)
	return nil
}

// readRequest resolves the form request: command-line arguments when given,
// otherwise an interactive prompt.
func readRequest(args []string, stdin io.Reader, stdout io.Writer) (string, error) {
	if len(args) > 0 {
		request := strings.TrimSpace(strings.Join(args, " "))
		if request == "" {
			return "", errors.New("empty form request")
		}
		return request, nil
	}

	printBanner(stdout)
	fmt.Fprint(stdout, "Enter your form request: ")

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read request: %w", err)
	}
	request := strings.TrimSpace(line)
	if request == "" {
		return "", errors.New("please provide form details")
	}
	return request, nil
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "=== Google Forms Creator ===")
	fmt.Fprintln(w, "Enter your form details:")
	fmt.Fprintln(w, "Format: 'Title: [Your Title] | Questions: [Question 1] | [Question 2] | ...'")
	fmt.Fprintln(w, "Example: 'Title: Customer Feedback | Questions: required What are your comments? | How satisfied are you? (Very Satisfied, Satisfied, Neutral, Dissatisfied, Very Dissatisfied)'")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "To mark questions as REQUIRED, prefix them with 'required':")
	fmt.Fprintln(w, "Example: 'Title: Survey | Questions: required How would you rate me? (Good, Bad) | What do you think? | required What should I improve?'")
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

// buildClient wires the completion backend. OpenAI is served through the
// native SDK provider; any other configured provider goes through gollm.
func buildClient(cfg config.Config, logger *slog.Logger) (*llm.Client, error) {
	middleware := llm.WithMiddleware(
		retryMiddleware(logger),
		loggingMiddleware(logger),
	)

	switch cfg.Provider {
	case "", "openai":
		var opts []llm.OpenAIOption
		if cfg.BaseURL != "" {
			opts = append(opts, llm.WithOpenAIBaseURL(cfg.BaseURL))
		}
		provider, err := llm.NewOpenAIProvider(cfg.OpenAIAPIKey, opts...)
		if err != nil {
			return nil, err
		}
		return llm.NewClient(
			llm.WithProvider("openai", provider),
			llm.WithDefaultProvider("openai"),
			middleware,
		), nil
	default:
		// gollm resolves the backend's API key from its conventional
		// environment variable.
		provider, err := llm.NewGollmProvider(cfg.Provider, "",
			llm.WithGollmModel(cfg.Model),
			llm.WithGollmTemperature(cfg.Temperature),
		)
		if err != nil {
			return nil, err
		}
		return llm.NewClient(
			llm.WithProvider(cfg.Provider, provider),
			llm.WithDefaultProvider(cfg.Provider),
			middleware,
		), nil
	}
}

// retryMiddleware retries transient provider failures with backoff before
// they surface to the loop.
func retryMiddleware(logger *slog.Logger) llm.Middleware {
	policy := llm.DefaultRetryPolicy()
	policy.OnRetry = func(err error, attempt int, delay time.Duration) {
		logger.Warn("retrying completion", "attempt", attempt, "delay", delay, "err", err)
	}
	return func(ctx context.Context, req llm.Request, next func(context.Context, llm.Request) (*llm.Response, error)) (*llm.Response, error) {
		return llm.Retry(ctx, policy, func(ctx context.Context) (*llm.Response, error) {
			return next(ctx, req)
		})
	}
}

// loggingMiddleware records every completion's latency and token usage.
func loggingMiddleware(logger *slog.Logger) llm.Middleware {
	return func(ctx context.Context, req llm.Request, next func(context.Context, llm.Request) (*llm.Response, error)) (*llm.Response, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		if err != nil {
			logger.Error("completion failed", "model", req.Model, "elapsed", time.Since(start), "err", err)
			return nil, err
		}
		logger.Debug("completion",
			"model", req.Model,
			"elapsed", time.Since(start),
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
		)
		return resp, nil
	}
}

// consumeEvents renders loop progress to the console and mirrors the
// warnings into the structured log. It returns when the channel closes.
func consumeEvents(events <-chan agent.Event, stdout io.Writer, logger *slog.Logger) {
	for ev := range events {
		switch ev.Kind {
		case agent.EventCompletionStart:
			fmt.Fprintf(stdout, "\n--- Iteration %v ---\n", ev.Data["iteration"])
		case agent.EventCompletionEnd:
			if text, _ := ev.Data["text"].(string); text != "" {
				fmt.Fprintf(stdout, "Assistant: %s\n", text)
			}
		case agent.EventToolCallStart:
			fmt.Fprintf(stdout, "\n[Executing tool] %v(%v)\n", ev.Data["tool"], ev.Data["arguments"])
		case agent.EventToolCallEnd:
			if errText, ok := ev.Data["error"].(string); ok {
				fmt.Fprintf(stdout, "Tool result: %s\n", errText)
				logger.Warn("tool call failed", "tool", ev.Data["tool"], "result", errText)
			} else {
				fmt.Fprintf(stdout, "Tool result: %v\n", ev.Data["output"])
			}
		case agent.EventNudge:
			logger.Debug("nudging the model to continue")
		case agent.EventIterationCap:
			logger.Warn("iteration cap reached", "iterations", ev.Data["iterations"])
		case agent.EventFinalization:
			fmt.Fprintf(stdout, "\n--- Completed after %v iterations ---\n", ev.Data["iterations"])
		case agent.EventWarning:
			logger.Warn(fmt.Sprint(ev.Data["message"]))
		case agent.EventError:
			logger.Error(fmt.Sprint(ev.Data["error"]))
		}
	}
}
