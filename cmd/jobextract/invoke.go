package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Smackface/go-job-extractor/internal/extractor"
	"github.com/Smackface/go-job-extractor/internal/handler"
)

var (
	invokePrompt string
	invokeEvent  string
	invokeOpenAI = newOpenAIFlags()
)

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run one extraction and print the response envelope",
	Long:  "Builds an event from --prompt, or reads one from --event (a file, or - for stdin), runs it through the extraction handler and prints the response.",
	RunE:  runInvoke,
}

func init() {
	invokeCmd.Flags().StringVarP(&invokePrompt, "prompt", "p", "", "prompt text to wrap in an event")
	invokeCmd.Flags().StringVarP(&invokeEvent, "event", "e", "", "path to an event JSON file, or - for stdin")
	invokeCmd.MarkFlagsMutuallyExclusive("prompt", "event")
	invokeCmd.MarkFlagsOneRequired("prompt", "event")
	invokeCmd.Flags().AddFlagSet(invokeOpenAI.FlagSet())
	rootCmd.AddCommand(invokeCmd)
}

func runInvoke(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	invokeOpenAI.apply(&cfg.OpenAI)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := setupLogger(cfg, debug)

	event, err := readEvent(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ex := extractor.New(extractor.NewOpenAIClient(cfg.OpenAI), cfg.OpenAI.Model, cfg.OpenAI.Timeout, logger)
	h := handler.New(ex, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resp, err := h.Handle(ctx, event)
	if err != nil {
		return err
	}
	if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extraction failed with status %d", resp.StatusCode)
	}
	return nil
}

func readEvent(stdin io.Reader) (handler.Event, error) {
	if invokePrompt != "" {
		return handler.NewEvent(invokePrompt)
	}

	var (
		data []byte
		err  error
	)
	if invokeEvent == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(invokeEvent)
	}
	if err != nil {
		return handler.Event{}, fmt.Errorf("read event: %w", err)
	}

	var event handler.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return handler.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if event.Body == "" {
		return handler.Event{}, errors.New("event has no body")
	}
	return event, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
