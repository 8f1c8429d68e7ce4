// Command pagetext is the Lambda that turns a URL into the visible text of the page,
// shaped as the body the job extractor accepts.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Smackface/go-job-extractor/internal/config"
	"github.com/Smackface/go-job-extractor/internal/logging"
	"github.com/Smackface/go-job-extractor/internal/pagetext"
)

func main() {
	cfg, err := config.Load(os.Getenv("JOBEXTRACT_CONFIG"))
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Format, cfg.Log.Level, os.Stdout)
	h := pagetext.NewHandler(pagetext.NewChromeRenderer(cfg.Page, logger), logger)
	lambda.Start(h.Handle)
}
