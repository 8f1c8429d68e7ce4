// Package pagetext renders a web page in headless Chrome and reduces it to the visible
// text that the job extraction handler consumes as its prompt.
package pagetext

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Smackface/go-job-extractor/internal/config"
	"github.com/Smackface/go-job-extractor/internal/logging"
)

// Renderer fetches the fully rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages with chromedp. Each call starts and tears down its own
// browser, so a ChromeRenderer carries no state between invocations.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
	settle   time.Duration
	lambda   bool
	logger   *slog.Logger
}

// NewChromeRenderer creates a renderer from the page settings.
func NewChromeRenderer(cfg config.PageConfig, logger *slog.Logger) *ChromeRenderer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ChromeRenderer{
		execPath: cfg.ChromePath,
		timeout:  cfg.Timeout,
		settle:   cfg.Settle,
		lambda:   config.InLambda(),
		logger:   logger,
	}
}

func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	if r.lambda {
		opts = append(opts,
			chromedp.NoSandbox,
			chromedp.DisableGPU,
			chromedp.Flag("single-process", true),
			chromedp.Flag("no-zygote", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}
	return opts
}

// Render navigates to url, waits for the body and returns the outer HTML of the document.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if r.settle > 0 {
		actions = append(actions, chromedp.Sleep(r.settle))
	}
	var page string
	actions = append(actions, chromedp.OuterHTML("html", &page, chromedp.ByQuery))

	start := time.Now()
	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	r.logger.Debug("page rendered", "url", url, "bytes", len(page), "elapsed", time.Since(start))
	return page, nil
}
