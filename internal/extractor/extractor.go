package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gpt "github.com/sashabaranov/go-openai"

	"github.com/Smackface/go-job-extractor/internal/config"
	"github.com/Smackface/go-job-extractor/internal/logging"
)

// ChatCompleter is the part of the completion service the extractor uses.
// *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req gpt.ChatCompletionRequest) (gpt.ChatCompletionResponse, error)
}

// NewOpenAIClient builds the completion-service client from cold-start configuration.
func NewOpenAIClient(cfg config.OpenAIConfig) *gpt.Client {
	clientCfg := gpt.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.OrgID != "" {
		clientCfg.OrgID = cfg.OrgID
	}
	return gpt.NewClientWithConfig(clientCfg)
}

// Result is what the service produced for one prompt. Exactly one of Record and Text
// is meaningful: Record when the service called get_job_info, Text otherwise.
type Result struct {
	Record       *JobRecord
	Text         string
	Model        string
	FinishReason gpt.FinishReason
}

// Extractor asks the completion service to extract job information from free text.
type Extractor struct {
	client  ChatCompleter
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates an Extractor. A zero timeout leaves the caller's deadline in charge.
func New(client ChatCompleter, model string, timeout time.Duration, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Extractor{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Request builds the completion request for prompt: the prompt as the only user
// message, get_job_info as the only tool, and the service free to choose.
func (e *Extractor) Request(prompt string) gpt.ChatCompletionRequest {
	return gpt.ChatCompletionRequest{
		Model: e.model,
		Messages: []gpt.ChatCompletionMessage{
			{Role: gpt.ChatMessageRoleUser, Content: prompt},
		},
		Tools:      []gpt.Tool{jobInfoTool},
		ToolChoice: "auto",
	}
}

// Extract sends prompt to the completion service and interprets the first choice.
func (e *Extractor) Extract(ctx context.Context, prompt string) (*Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.CreateChatCompletion(ctx, e.Request(prompt))
	if err != nil {
		return nil, serviceError(err)
	}

	e.logger.Debug("completion received",
		"id", resp.ID,
		"model", resp.Model,
		"choices", len(resp.Choices),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion returned no choices", ErrSchemaViolation)
	}

	choice := resp.Choices[0]
	msg := choice.Message
	result := &Result{Model: resp.Model, FinishReason: choice.FinishReason}

	if call, ok := functionCall(msg); ok {
		e.logger.Debug("function call", "name", call.Name, "arguments", call.Arguments)
		if len(msg.ToolCalls) > 1 {
			ignored := make([]string, 0, len(msg.ToolCalls)-1)
			for _, tc := range msg.ToolCalls[1:] {
				ignored = append(ignored, tc.Function.Name)
			}
			e.logger.Debug("extra tool calls ignored", "count", len(ignored), "names", ignored)
		}
		if call.Name != FunctionName {
			return nil, fmt.Errorf("%w: service called unknown function %q", ErrSchemaViolation, call.Name)
		}
		record, err := ParseJobInfo(call.Arguments)
		if err != nil {
			return nil, err
		}
		result.Record = &record
		return result, nil
	}

	e.logger.Debug("free text answer", "content", msg.Content, "finish_reason", choice.FinishReason)
	if msg.Content == "" {
		return nil, fmt.Errorf("%w: service returned neither a function call nor text (finish_reason %q)", ErrSchemaViolation, choice.FinishReason)
	}
	result.Text = msg.Content
	return result, nil
}

// functionCall returns the first function invocation in msg, from either the tool
// calls list or the legacy function_call field.
func functionCall(msg gpt.ChatCompletionMessage) (gpt.FunctionCall, bool) {
	for _, tc := range msg.ToolCalls {
		if tc.Type == "" || tc.Type == gpt.ToolTypeFunction {
			return tc.Function, true
		}
	}
	if msg.FunctionCall != nil {
		return *msg.FunctionCall, true
	}
	return gpt.FunctionCall{}, false
}

// serviceError wraps a failed completion call as ErrServiceUnavailable, keeping the
// HTTP status when the SDK reports one.
func serviceError(err error) error {
	var apiErr *gpt.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: HTTP %d: %w", ErrServiceUnavailable, apiErr.HTTPStatusCode, err)
	}
	var reqErr *gpt.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: HTTP %d: %w", ErrServiceUnavailable, reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
}
