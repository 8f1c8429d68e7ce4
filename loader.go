package main

import (
	"fmt"
	"os"

	"github.com/Smackface/go-job-extractor/internal/config"
	"github.com/Smackface/go-job-extractor/internal/extractor"
	"github.com/Smackface/go-job-extractor/internal/handler"
	"github.com/Smackface/go-job-extractor/internal/logging"
)

// configPathEnv names the optional YAML config file. Lambda deployments usually leave
// it unset and configure everything through the environment.
const configPathEnv = "JOBEXTRACT_CONFIG"

// loadHandler wires the extraction handler at cold start.
func loadHandler() (*handler.Handler, error) {
	cfg, err := config.Load(os.Getenv(configPathEnv))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger := logging.New(cfg.Log.Format, cfg.Log.Level, os.Stdout)
	client := extractor.NewOpenAIClient(cfg.OpenAI)
	ex := extractor.New(client, cfg.OpenAI.Model, cfg.OpenAI.Timeout, logger)

	logger.Info("job extractor ready", "model", cfg.OpenAI.Model, "base_url", cfg.OpenAI.BaseURL != "")
	return handler.New(ex, logger), nil
}
