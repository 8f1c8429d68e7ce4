package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Smackface/go-job-extractor/internal/handler"
	"github.com/Smackface/go-job-extractor/internal/pagetext"
)

var (
	pageURL      string
	pageTextOnly bool
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Render a page and print its visible text envelope",
	Long:  "Renders --url in headless Chrome and prints the page text response, whose body can be fed to invoke --event.",
	RunE:  runPage,
}

func init() {
	pageCmd.Flags().StringVarP(&pageURL, "url", "u", "", "page to render")
	pageCmd.Flags().BoolVar(&pageTextOnly, "text-only", false, "print only the extracted text")
	_ = pageCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(pageCmd)
}

func runPage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := setupLogger(cfg, debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := pagetext.NewHandler(pagetext.NewChromeRenderer(cfg.Page, logger), logger)
	resp, err := h.Handle(ctx, pagetext.Event{URL: pageURL})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("page text failed with status %d: %s", resp.StatusCode, resp.Body)
	}

	if !pageTextOnly {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	var body handler.EventBody
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return fmt.Errorf("decode page text: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), body.Result)
	return nil
}
