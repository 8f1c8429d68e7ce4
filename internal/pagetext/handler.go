package pagetext

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"

	jobhandler "github.com/Smackface/go-job-extractor/internal/handler"
	"github.com/Smackface/go-job-extractor/internal/logging"
)

// Messages returned in the body of failed responses.
const (
	MsgMissingURL = "Missing url parameter."
	MsgInvalidURL = "Invalid url parameter."
	MsgExtract    = "Error extracting text from the webpage."
)

// Event asks for the visible text of one page.
type Event struct {
	URL string `json:"url"`
}

// Response carries the page text as {"result": text} in Body, which is the body shape
// the job extraction handler accepts.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Handler serves page text requests.
type Handler struct {
	renderer Renderer
	logger   *slog.Logger
}

// NewHandler creates a Handler that renders pages with r.
func NewHandler(r Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{renderer: r, logger: logger}
}

// Handle renders event.URL and returns its visible text.
func (h *Handler) Handle(ctx context.Context, event Event) (Response, error) {
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("request_id", lc.AwsRequestID)
	}

	raw := strings.TrimSpace(event.URL)
	if raw == "" {
		logger.Warn("missing url parameter")
		return Response{StatusCode: http.StatusBadRequest, Body: MsgMissingURL}, nil
	}
	if !validURL(raw) {
		logger.Warn("invalid url parameter", "url", raw)
		return Response{StatusCode: http.StatusBadRequest, Body: MsgInvalidURL}, nil
	}

	page, err := h.renderer.Render(ctx, raw)
	if err != nil {
		logger.Error("render failed", "url", raw, "error", err)
		return Response{StatusCode: http.StatusInternalServerError, Body: MsgExtract}, nil
	}
	text, err := VisibleText(page)
	if err != nil {
		logger.Error("text extraction failed", "url", raw, "error", err)
		return Response{StatusCode: http.StatusInternalServerError, Body: MsgExtract}, nil
	}

	next, err := jobhandler.NewEvent(text)
	if err != nil {
		logger.Error("encode result failed", "url", raw, "error", err)
		return Response{StatusCode: http.StatusInternalServerError, Body: MsgExtract}, nil
	}
	logger.Info("page text extracted", "url", raw, "chars", len(text))
	return Response{StatusCode: http.StatusOK, Body: next.Body}, nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
