package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gpt "github.com/sashabaranov/go-openai"

	"github.com/Smackface/go-job-extractor/internal/config"
)

const validArgs = `{"job_poster":"Acme","job_title":"Senior Engineer","job_description":"...","job_location":"Austin, TX","technical_skills":"Go, Kubernetes"}`

// fakeCompleter returns a canned response and records every request it receives.
type fakeCompleter struct {
	resp     gpt.ChatCompletionResponse
	err      error
	requests []gpt.ChatCompletionRequest
	deadline bool
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req gpt.ChatCompletionRequest) (gpt.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	_, f.deadline = ctx.Deadline()
	return f.resp, f.err
}

func toolCallResponse(name, args string) gpt.ChatCompletionResponse {
	return gpt.ChatCompletionResponse{
		Model: "gpt-4o-mini",
		Choices: []gpt.ChatCompletionChoice{{
			FinishReason: gpt.FinishReasonToolCalls,
			Message: gpt.ChatCompletionMessage{
				Role: gpt.ChatMessageRoleAssistant,
				ToolCalls: []gpt.ToolCall{{
					ID:       "call_1",
					Type:     gpt.ToolTypeFunction,
					Function: gpt.FunctionCall{Name: name, Arguments: args},
				}},
			},
		}},
	}
}

func textResponse(content string) gpt.ChatCompletionResponse {
	return gpt.ChatCompletionResponse{
		Model: "gpt-4o-mini",
		Choices: []gpt.ChatCompletionChoice{{
			FinishReason: gpt.FinishReasonStop,
			Message:      gpt.ChatCompletionMessage{Role: gpt.ChatMessageRoleAssistant, Content: content},
		}},
	}
}

func TestExtract_SendsPromptAsSoleUserMessage(t *testing.T) {
	fake := &fakeCompleter{resp: textResponse("ok")}
	ex := New(fake, "gpt-4o-mini", 0, nil)

	prompt := "  Posted by Acme: Senior Engineer in Austin, TX, needs Go and Kubernetes\n"
	if _, err := ex.Extract(context.Background(), prompt); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(fake.requests))
	}
	req := fake.requests[0]
	if len(req.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(req.Messages))
	}
	if req.Messages[0].Role != gpt.ChatMessageRoleUser || req.Messages[0].Content != prompt {
		t.Errorf("message = %+v, want user message with the prompt verbatim", req.Messages[0])
	}
	if req.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Tools) != 1 || req.Tools[0].Function.Name != FunctionName {
		t.Errorf("tools = %+v, want get_job_info only", req.Tools)
	}
	if req.ToolChoice != "auto" {
		t.Errorf("tool_choice = %v, want auto", req.ToolChoice)
	}
}

func TestExtract_ToolCallYieldsRecord(t *testing.T) {
	fake := &fakeCompleter{resp: toolCallResponse(FunctionName, validArgs)}
	ex := New(fake, "gpt-4o-mini", 0, nil)

	res, err := ex.Extract(context.Background(), "posting")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Record == nil {
		t.Fatal("expected a record")
	}
	if res.Record.Poster != "Acme" || res.Record.TechnicalSkills != "Go, Kubernetes" {
		t.Errorf("record = %+v", res.Record)
	}
	if res.Text != "" {
		t.Errorf("Text = %q, want empty alongside a record", res.Text)
	}
	if res.FinishReason != gpt.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", res.FinishReason)
	}
}

func TestExtract_ExtraToolCallsAreLogged(t *testing.T) {
	resp := toolCallResponse(FunctionName, validArgs)
	resp.Choices[0].Message.ToolCalls = append(resp.Choices[0].Message.ToolCalls, gpt.ToolCall{
		ID:       "call_2",
		Type:     gpt.ToolTypeFunction,
		Function: gpt.FunctionCall{Name: FunctionName, Arguments: validArgs},
	})
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ex := New(&fakeCompleter{resp: resp}, "gpt-4o-mini", 0, logger)

	res, err := ex.Extract(context.Background(), "posting")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Record == nil || res.Record.Poster != "Acme" {
		t.Errorf("record = %+v, want the first call's arguments", res.Record)
	}
	if !strings.Contains(buf.String(), "extra tool calls ignored") || !strings.Contains(buf.String(), "count=1") {
		t.Errorf("extra tool call not logged:\n%s", buf.String())
	}
}

func TestExtract_LegacyFunctionCall(t *testing.T) {
	fake := &fakeCompleter{resp: gpt.ChatCompletionResponse{
		Choices: []gpt.ChatCompletionChoice{{
			FinishReason: gpt.FinishReasonFunctionCall,
			Message: gpt.ChatCompletionMessage{
				Role:         gpt.ChatMessageRoleAssistant,
				FunctionCall: &gpt.FunctionCall{Name: FunctionName, Arguments: validArgs},
			},
		}},
	}}
	ex := New(fake, "gpt-4o-mini", 0, nil)

	res, err := ex.Extract(context.Background(), "posting")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Record == nil || res.Record.Title != "Senior Engineer" {
		t.Errorf("record = %+v", res.Record)
	}
}

func TestExtract_FreeTextPassesThrough(t *testing.T) {
	text := "I could not find a job posting in that text.\n"
	fake := &fakeCompleter{resp: textResponse(text)}
	ex := New(fake, "gpt-4o-mini", 0, nil)

	res, err := ex.Extract(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Record != nil {
		t.Errorf("Record = %+v, want nil", res.Record)
	}
	if res.Text != text {
		t.Errorf("Text = %q, want %q", res.Text, text)
	}
}

func TestExtract_SchemaViolations(t *testing.T) {
	tests := map[string]gpt.ChatCompletionResponse{
		"no choices":       {},
		"empty text":       textResponse(""),
		"unknown function": toolCallResponse("get_weather", `{"city":"Austin"}`),
		"missing field":    toolCallResponse(FunctionName, `{"job_poster":"Acme"}`),
		"bad arguments":    toolCallResponse(FunctionName, `{"job_poster":`),
	}
	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			ex := New(&fakeCompleter{resp: resp}, "gpt-4o-mini", 0, nil)

			res, err := ex.Extract(context.Background(), "posting")
			if !errors.Is(err, ErrSchemaViolation) {
				t.Fatalf("err = %v, want ErrSchemaViolation", err)
			}
			if res != nil {
				t.Errorf("result = %+v, want nil", res)
			}
		})
	}
}

func TestExtract_ServiceErrorIsUnavailable(t *testing.T) {
	ex := New(&fakeCompleter{err: errors.New("connection reset")}, "gpt-4o-mini", 0, nil)

	_, err := ex.Extract(context.Background(), "posting")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestExtract_AppliesTimeout(t *testing.T) {
	fake := &fakeCompleter{resp: textResponse("ok")}

	if _, err := New(fake, "m", 0, nil).Extract(context.Background(), "p"); err != nil {
		t.Fatal(err)
	}
	if fake.deadline {
		t.Error("deadline set with zero timeout")
	}

	if _, err := New(fake, "m", time.Minute, nil).Extract(context.Background(), "p"); err != nil {
		t.Fatal(err)
	}
	if !fake.deadline {
		t.Error("no deadline with a configured timeout")
	}
}

// newTestServer serves body with statusCode on /v1/chat/completions and captures the
// raw request body.
func newTestServer(t *testing.T, statusCode int, body string, captured *[]byte) *gpt.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if captured != nil {
			*captured, _ = io.ReadAll(r.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return NewOpenAIClient(config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
}

func TestExtract_OpenAIClientWireFormat(t *testing.T) {
	var captured []byte
	body := `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "gpt-4o-mini",
		"choices": [{
			"index": 0,
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"tool_calls": [{
					"id": "call_1",
					"type": "function",
					"function": {"name": "get_job_info", "arguments": ` + mustQuote(t, validArgs) + `}
				}]
			}
		}]
	}`
	client := newTestServer(t, http.StatusOK, body, &captured)
	ex := New(client, "gpt-4o-mini", 0, nil)

	res, err := ex.Extract(context.Background(), "Posted by Acme")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Record == nil || res.Record.Location != "Austin, TX" {
		t.Fatalf("record = %+v", res.Record)
	}

	var sent struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Tools []struct {
			Type     string `json:"type"`
			Function struct {
				Name       string `json:"name"`
				Parameters struct {
					Type     string   `json:"type"`
					Required []string `json:"required"`
				} `json:"parameters"`
			} `json:"function"`
		} `json:"tools"`
		ToolChoice string `json:"tool_choice"`
	}
	if err := json.Unmarshal(captured, &sent); err != nil {
		t.Fatalf("decode sent request: %v", err)
	}
	if len(sent.Messages) != 1 || sent.Messages[0].Content != "Posted by Acme" {
		t.Errorf("messages = %+v", sent.Messages)
	}
	if sent.ToolChoice != "auto" {
		t.Errorf("tool_choice = %q, want auto", sent.ToolChoice)
	}
	if len(sent.Tools) != 1 || sent.Tools[0].Function.Name != "get_job_info" || sent.Tools[0].Function.Parameters.Type != "object" {
		t.Errorf("tools = %+v", sent.Tools)
	}
	if len(sent.Tools) == 1 && len(sent.Tools[0].Function.Parameters.Required) != 5 {
		t.Errorf("required = %v, want five fields", sent.Tools[0].Function.Parameters.Required)
	}
}

func TestExtract_OpenAIClientHTTPError(t *testing.T) {
	client := newTestServer(t, http.StatusInternalServerError,
		`{"error":{"message":"upstream exploded","type":"server_error"}}`, nil)
	ex := New(client, "gpt-4o-mini", 0, nil)

	_, err := ex.Extract(context.Background(), "posting")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
	var apiErr *gpt.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != http.StatusInternalServerError {
		t.Errorf("err = %v, want wrapped APIError with HTTP 500", err)
	}
}

func TestExtract_OpenAIClientUnauthorized(t *testing.T) {
	client := newTestServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, nil)
	ex := New(client, "gpt-4o-mini", 0, nil)

	_, err := ex.Extract(context.Background(), "posting")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func mustQuote(t *testing.T, s string) string {
	t.Helper()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
