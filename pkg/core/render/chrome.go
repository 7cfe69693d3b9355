package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"statement_scraper/pkg/core/logger"
	"statement_scraper/pkg/core/statement"
)

// Toggles the page must receive before its table shows quarterly, fully
// expanded rows.
const (
	quarterlyToggle = `//span[text()="Quarterly"]`
	expandAllToggle = `//span[text()="Expand All"]`
)

// ChromeConfig configures the headless browser.
type ChromeConfig struct {
	BaseURL     string
	ExecPath    string
	UserAgent   string
	Headless    bool
	SettleDelay time.Duration
	PageTimeout time.Duration
}

// DefaultChromeConfig returns the settings the scraper uses out of the box.
func DefaultChromeConfig() ChromeConfig {
	return ChromeConfig{
		BaseURL:     DefaultBaseURL,
		Headless:    true,
		SettleDelay: 10 * time.Second,
		PageTimeout: 60 * time.Second,
	}
}

// ChromeSource renders statement pages in a headless Chrome.
type ChromeSource struct {
	config ChromeConfig
	log    logrus.FieldLogger
}

// NewChromeSource creates a browser-backed page source.
func NewChromeSource(config ChromeConfig, log logrus.FieldLogger) *ChromeSource {
	if log == nil {
		log = logger.Discard()
	}
	return &ChromeSource{config: config, log: log}
}

func (c *ChromeSource) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", c.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if c.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.config.UserAgent))
	}
	if c.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.config.ExecPath))
	}
	return opts
}

// FetchStatement opens the statement page, switches it to quarterly
// periods, expands every row group, waits for the table to settle and
// returns the body markup. Each call runs its own browser.
func (c *ChromeSource) FetchStatement(ctx context.Context, company string, kind statement.Kind) (string, error) {
	target := StatementURL(c.config.BaseURL, company, kind)
	log := c.log.WithFields(logrus.Fields{"company": company, "statement": kind.String(), "url": target})

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Debugf))
	defer cancelBrowser()

	if c.config.PageTimeout > 0 {
		var cancel context.CancelFunc
		browserCtx, cancel = context.WithTimeout(browserCtx, c.config.PageTimeout)
		defer cancel()
	}

	start := time.Now()
	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitVisible(quarterlyToggle, chromedp.BySearch),
		chromedp.Click(quarterlyToggle, chromedp.BySearch),
		chromedp.WaitVisible(expandAllToggle, chromedp.BySearch),
		chromedp.Click(expandAllToggle, chromedp.BySearch),
		chromedp.Sleep(c.config.SettleDelay),
		chromedp.Evaluate(`document.body.innerHTML`, &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s page for %s: %w", kind, company, err)
	}

	log.WithFields(logrus.Fields{"bytes": len(html), "elapsed": time.Since(start).String()}).Info("rendered statement page")
	return html, nil
}
