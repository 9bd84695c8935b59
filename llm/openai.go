package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider implements Provider over the official OpenAI SDK. It is
// the primary backend: native function calling carries the tool-call ids
// the loop depends on.
type OpenAIProvider struct {
	client openai.Client
	name   string
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*openaiOptions)

type openaiOptions struct {
	baseURL string
}

// WithOpenAIBaseURL overrides the API base URL (gateways, proxies, or
// compatible endpoints).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(o *openaiOptions) {
		o.baseURL = url
	}
}

// NewOpenAIProvider creates a provider using the given API key.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, &ConfigurationError{ClientError: ClientError{
			Message: "openai: API key is required",
		}}
	}

	var cfg openaiOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &OpenAIProvider{
		client: openai.NewClient(reqOpts...),
		name:   "openai",
	}, nil
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete sends one chat completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return nil, err
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.translateError(err)
	}

	return p.buildResponse(completion)
}

func (p *OpenAIProvider) buildParams(req Request) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*req.MaxTokens))
	}

	for _, m := range req.Messages {
		union, err := messageParam(m)
		if err != nil {
			return params, err
		}
		params.Messages = append(params.Messages, union)
	}

	for _, t := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.Parameters),
			},
		})
	}

	if len(req.Tools) > 0 && req.ToolChoice != "" {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(req.ToolChoice)),
		}
	}

	return params, nil
}

// messageParam converts one Message to the wire union for its role.
func messageParam(m Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch m.Role {
	case RoleSystem:
		return openai.SystemMessage(m.Content), nil
	case RoleUser:
		return openai.UserMessage(m.Content), nil
	case RoleAssistant:
		assistant := openai.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
				OfString: openai.String(m.Content),
			}
		}
		for _, tc := range m.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}, nil
	case RoleTool:
		return openai.ChatCompletionMessageParamUnion{
			OfTool: &openai.ChatCompletionToolMessageParam{
				ToolCallID: m.ToolCallID,
				Content: openai.ChatCompletionToolMessageParamContentUnion{
					OfString: openai.String(m.Content),
				},
			},
		}, nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, &InvalidRequestError{ProviderError: ProviderError{
			ClientError: ClientError{Message: fmt.Sprintf("openai: unsupported message role %q", m.Role)},
			Provider:    "openai",
		}}
	}
}

func (p *OpenAIProvider) buildResponse(completion *openai.ChatCompletion) (*Response, error) {
	if len(completion.Choices) == 0 {
		return nil, &ServerError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "openai: response contained no choices"},
			Provider:    p.name,
			Retryable:   true,
		}}
	}
	choice := completion.Choices[0]

	msg := Message{Role: RoleAssistant, Content: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: []byte(tc.Function.Arguments),
		})
	}

	return &Response{
		ID:           completion.ID,
		Model:        completion.Model,
		Provider:     p.name,
		Message:      msg,
		FinishReason: finishReasonFromOpenAI(choice.FinishReason),
		Usage: Usage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:  int(completion.Usage.TotalTokens),
		},
	}, nil
}

func finishReasonFromOpenAI(reason string) FinishReason {
	switch reason {
	case "stop":
		return FinishStop
	case "tool_calls", "function_call":
		return FinishToolCalls
	case "length":
		return FinishLength
	case "content_filter":
		return FinishFiltered
	default:
		return FinishOther
	}
}

// translateError converts SDK errors into the package taxonomy.
func (p *OpenAIProvider) translateError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		var retryAfter *float64
		if apierr.Response != nil {
			if v := apierr.Response.Header.Get("Retry-After"); v != "" {
				if secs, perr := strconv.ParseFloat(v, 64); perr == nil {
					retryAfter = &secs
				}
			}
		}
		return ErrorFromStatusCode(apierr.StatusCode, apierr.Error(), p.name, retryAfter)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &RequestTimeoutError{ClientError: ClientError{
			Message: "openai: request cancelled or timed out",
			Cause:   err,
		}}
	}
	return &NetworkError{ClientError: ClientError{
		Message: "openai: request failed",
		Cause:   err,
	}}
}
