package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Smackface/go-job-extractor/internal/config"
	"github.com/Smackface/go-job-extractor/internal/logging"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "jobextract",
	Short:         "Extract structured job info from posting text",
	Long:          "jobextract renders job pages, extracts job info through the completion service and prints the envelopes the Lambdas exchange.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBEXTRACT_CONFIG env var, then environment only)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBEXTRACT_CONFIG env var > no file.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("JOBEXTRACT_CONFIG")
	}
	return config.Load(path)
}

// setupLogger writes text logs to stderr so stdout carries only command output.
func setupLogger(cfg *config.Config, dbg bool) *slog.Logger {
	level := cfg.Log.Level
	if dbg {
		level = "debug"
	}
	return logging.New("text", level, os.Stderr)
}

// openAIFlags overrides completion-service settings from the command line.
type openAIFlags struct {
	fs      *pflag.FlagSet
	model   string
	baseURL string
	timeout time.Duration
}

func newOpenAIFlags() *openAIFlags {
	f := &openAIFlags{fs: pflag.NewFlagSet("openai", pflag.ContinueOnError)}
	f.fs.StringVar(&f.model, "model", "", "completion model (overrides OPENAI_MODEL)")
	f.fs.StringVar(&f.baseURL, "base-url", "", "completion service base URL (overrides OPENAI_BASE_URL)")
	f.fs.DurationVar(&f.timeout, "timeout", 0, "per-request timeout (overrides OPENAI_TIMEOUT)")
	return f
}

// FlagSet returns the flags for registration on a command.
func (f *openAIFlags) FlagSet() *pflag.FlagSet {
	return f.fs
}

// apply copies every flag the user set into cfg.
func (f *openAIFlags) apply(cfg *config.OpenAIConfig) {
	if f.fs.Changed("model") {
		cfg.Model = f.model
	}
	if f.fs.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if f.fs.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
}
