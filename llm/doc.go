// Package llm is a small provider-agnostic completion client. It routes
// requests to registered providers, applies middleware, classifies provider
// failures into a typed error hierarchy, and retries transient ones.
//
// The package deliberately has no conversation state and no tool-execution
// logic; callers own their transcripts and pass the full message sequence
// on every call. The agent package builds its loop on top of this.
//
// # Providers
//
// Two backends ship with the package. OpenAIProvider wraps the official
// OpenAI SDK and is the primary one: it carries native tool-call ids
// through Complete. GollmProvider wraps gollm for backends without a
// dedicated adapter; it flattens the conversation into a single prompt and
// recovers tool calls from the response text.
//
//	provider, _ := llm.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"))
//	client := llm.NewClient(llm.WithProvider("openai", provider))
//
//	resp, _ := client.Complete(ctx, llm.Request{
//	    Model:    "gpt-4o",
//	    Messages: []llm.Message{llm.UserMessage("Hello")},
//	})
//	fmt.Println(resp.Text())
//
// # Tool calling
//
// Requests carry tool definitions; responses carry the model's requested
// invocations in order:
//
//	resp, _ := client.Complete(ctx, llm.Request{
//	    Model:    "gpt-4o",
//	    Messages: msgs,
//	    Tools: []llm.ToolDefinition{{
//	        Name:        "create_form",
//	        Description: "Create a new form",
//	        Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
//	    }},
//	    ToolChoice: llm.ToolChoiceAuto,
//	})
//	for _, call := range resp.ToolCalls() {
//	    // dispatch call.Name with call.Arguments, answer with ToolMessage
//	}
//
// # Retries
//
// Retry wraps any call with exponential backoff, honoring IsRetryable and
// rate limit RetryAfter hints:
//
//	resp, err := llm.Retry(ctx, llm.DefaultRetryPolicy(), func(ctx context.Context) (*llm.Response, error) {
//	    return client.Complete(ctx, req)
//	})
package llm
