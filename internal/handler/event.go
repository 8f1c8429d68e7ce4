package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Smackface/go-job-extractor/internal/extractor"
)

// SchemaVersion identifies the event and response envelopes below.
const SchemaVersion = "v1"

// Event is the inbound envelope. Body holds a JSON object whose "result" field is the
// prompt, which is what the page text function emits.
type Event struct {
	Body            string `json:"body" jsonschema_description:"JSON-encoded object with a result field holding the prompt"`
	IsBase64Encoded bool   `json:"isBase64Encoded,omitempty" jsonschema_description:"Body is standard base64 of the JSON string"`
}

// EventBody is the decoded form of Event.Body.
type EventBody struct {
	Result string `json:"result" jsonschema_description:"Free text handed to the completion service as the user message"`
}

// Response is the outbound envelope. A successful extraction sets JobData, a free-text
// answer or an error sets Body.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body,omitempty" jsonschema_description:"Free-text answer or JSON-encoded ErrorBody"`
	JobData    string `json:"job_data,omitempty" jsonschema_description:"JSON-encoded job record"`
}

// ErrorBody is JSON-encoded into Response.Body for non-200 responses.
type ErrorBody struct {
	Error   string `json:"error" jsonschema:"enum=MalformedInputError,enum=ServiceUnavailableError,enum=SchemaViolationError,enum=InternalError"`
	Message string `json:"message"`
}

// NewEvent wraps prompt the way upstream producers do.
func NewEvent(prompt string) (Event, error) {
	body, err := json.Marshal(EventBody{Result: prompt})
	if err != nil {
		return Event{}, fmt.Errorf("encode event body: %w", err)
	}
	return Event{Body: string(body)}, nil
}

// Prompt resolves the prompt carried by the event. Every failure is ErrMalformedInput.
func (e Event) Prompt() (string, error) {
	body := e.Body
	if e.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return "", fmt.Errorf("%w: body is not valid base64: %v", extractor.ErrMalformedInput, err)
		}
		body = string(decoded)
	}
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("%w: event body is empty", extractor.ErrMalformedInput)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return "", fmt.Errorf("%w: event body is not a JSON object: %v", extractor.ErrMalformedInput, err)
	}
	raw, ok := fields["result"]
	if !ok {
		return "", fmt.Errorf("%w: event body has no result field", extractor.ErrMalformedInput)
	}
	var prompt string
	if err := json.Unmarshal(raw, &prompt); err != nil {
		return "", fmt.Errorf("%w: result must be a string", extractor.ErrMalformedInput)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: result is empty", extractor.ErrMalformedInput)
	}
	return prompt, nil
}
