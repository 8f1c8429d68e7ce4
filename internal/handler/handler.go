// Package handler implements the job-info extraction Lambda contract: one inbound
// event in, one response envelope out.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/Smackface/go-job-extractor/internal/extractor"
	"github.com/Smackface/go-job-extractor/internal/logging"
)

// JobExtractor turns a prompt into either a job record or a free-text answer.
type JobExtractor interface {
	Extract(ctx context.Context, prompt string) (*extractor.Result, error)
}

// Handler serves one extraction per invocation. It holds no per-request state and is
// safe to reuse across warm invocations.
type Handler struct {
	extractor JobExtractor
	logger    *slog.Logger
}

// New creates a Handler around an already configured extractor.
func New(ex JobExtractor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{extractor: ex, logger: logger}
}

// Handle is the Lambda entry point. Failures are reported through the response status
// and an ErrorBody; the returned error is always nil so callers get a structured answer.
func (h *Handler) Handle(ctx context.Context, event Event) (Response, error) {
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("request_id", lc.AwsRequestID)
	}
	logger.Debug("event received", "body", event.Body, "base64", event.IsBase64Encoded)

	prompt, err := event.Prompt()
	if err != nil {
		return errorResponse(logger, err), nil
	}
	logger.Debug("prompt resolved", "prompt", prompt)

	res, err := h.extractor.Extract(ctx, prompt)
	if err != nil {
		return errorResponse(logger, err), nil
	}

	if res.Record != nil {
		data, err := res.Record.Encode()
		if err != nil {
			return errorResponse(logger, err), nil
		}
		logger.Info("job info extracted", "model", res.Model, "title", res.Record.Title, "poster", res.Record.Poster)
		return Response{StatusCode: http.StatusOK, JobData: data}, nil
	}

	logger.Info("free text answer returned", "model", res.Model, "finish_reason", res.FinishReason)
	return Response{StatusCode: http.StatusOK, Body: res.Text}, nil
}

// StatusFor maps an error kind to the response status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, extractor.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, extractor.ErrSchemaViolation):
		return http.StatusBadGateway
	case errors.Is(err, extractor.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(logger *slog.Logger, err error) Response {
	kind := extractor.KindOf(err)
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("extraction failed", "kind", kind, "status", status, "error", err)
	} else {
		logger.Warn("extraction rejected", "kind", kind, "status", status, "error", err)
	}

	body, marshalErr := json.Marshal(ErrorBody{Error: kind, Message: err.Error()})
	if marshalErr != nil {
		body = []byte(`{"error":"InternalError","message":"encode error body"}`)
	}
	return Response{StatusCode: status, Body: string(body)}
}
