package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
)

// httpModeEnv switches the function to the HTTP API event shape.
const httpModeEnv = "JOBEXTRACT_HTTP"

func main() {
	h, err := loadHandler()
	if err != nil {
		slog.Error("cold start failed", "error", err)
		os.Exit(1)
	}
	if os.Getenv(httpModeEnv) == "true" {
		lambda.Start(h.HandleHTTP)
		return
	}
	lambda.Start(h.Handle)
}
