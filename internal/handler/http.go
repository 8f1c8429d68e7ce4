package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// HandleHTTP serves the same extraction behind an HTTP API (payload format 2.0). The
// HTTP API forwards only the body of a proxy response, so the job record becomes the
// body itself.
func (h *Handler) HandleHTTP(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := h.Handle(ctx, Event{Body: req.Body, IsBase64Encoded: req.IsBase64Encoded})
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	body, contentType := resp.Body, "text/plain; charset=utf-8"
	switch {
	case resp.JobData != "":
		body, contentType = resp.JobData, "application/json"
	case resp.StatusCode != http.StatusOK:
		contentType = "application/json"
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": contentType},
		Body:       body,
	}, nil
}
