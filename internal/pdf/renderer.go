// Package pdf renders inspection reports and offers to PDF through headless
// Chrome, driven by the render queue.
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// A4 portrait with 15mm margins, in inches as Chrome expects.
const (
	paperWidthIn  = 8.27
	paperHeightIn = 11.69
	marginIn      = 0.59
)

// ChromeRenderer drives a headless Chrome over the DevTools protocol. With a
// remote URL it attaches to an existing browser (the usual deployment); left
// empty it launches a local instance.
type ChromeRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeRenderer creates a renderer bound to remoteURL, or to a locally
// launched Chrome when remoteURL is empty.
func NewChromeRenderer(remoteURL string, timeout time.Duration, logger *zap.Logger) *ChromeRenderer {
	r := &ChromeRenderer{timeout: timeout, logger: logger}
	if timeout <= 0 {
		r.timeout = 60 * time.Second
	}

	if remoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), remoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// RenderHTML prints html to a PDF document.
func (r *ChromeRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("render: empty document")
	}

	// The browser context must descend from the allocator, not the caller,
	// so the timeout is layered on top and caller cancellation forwarded.
	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx)
	defer browserCancel()
	runCtx, cancel := context.WithTimeout(browserCtx, r.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var data []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdfData, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(marginIn).
				WithMarginRight(marginIn).
				WithMarginBottom(marginIn).
				WithMarginLeft(marginIn).
				WithLandscape(false).
				Do(ctx)
			if err != nil {
				return err
			}
			data = pdfData
			return nil
		}),
	)
	if err != nil {
		if runCtx.Err() != nil {
			return nil, fmt.Errorf("render: %w", runCtx.Err())
		}
		r.logger.Error("chrome render failed", zap.Error(err))
		return nil, fmt.Errorf("render: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("render: chrome returned an empty document")
	}
	return data, nil
}

func (r *ChromeRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

var _ port.PDFRenderer = (*ChromeRenderer)(nil)
