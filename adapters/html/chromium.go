package paperhtml

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/goliatone/go-questionpaper/paper"
)

// DefaultPageMargin is the preview print margin in CSS pixels.
const DefaultPageMargin = 40.0

const (
	cssPixelsPerInch = 96.0
	mmPerInch        = 25.4
)

// sheetsMM are portrait sheet sizes in millimetres, keyed like paper.Settings.
var sheetsMM = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// PrintOptions controls Chromium page setup.
type PrintOptions struct {
	PageSize      string
	Landscape     bool
	MarginPx      float64
	BlockExternal bool
}

// ChromiumEngine prints HTML with one lazily started headless browser. Each
// print runs in its own tab. After Close the next Print starts a new browser.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string

	mu      sync.Mutex
	browser context.Context
	release func()
}

// Print loads htmlInput into a fresh tab and returns the printed PDF.
func (e *ChromiumEngine) Print(ctx context.Context, htmlInput []byte, opts PrintOptions) ([]byte, error) {
	if e == nil {
		return nil, paper.NewError(paper.KindInternal, "chromium engine is nil", nil)
	}
	params, err := printParams(opts)
	if err != nil {
		return nil, err
	}

	tab, closeTab := chromedp.NewContext(e.browserContext())
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	runCtx := tab
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(tab, e.Timeout)
		defer cancel()
	}

	var pdf []byte
	tasks := chromedp.Tasks{}
	if opts.BlockExternal {
		tasks = append(tasks, network.Enable(), network.SetBlockedURLs([]string{"http://*", "https://*"}))
	}
	tasks = append(tasks,
		chromedp.Navigate("about:blank"),
		loadDocument(string(htmlInput)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		printTo(params, &pdf),
	)

	if err := chromedp.Run(runCtx, tasks); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, paper.NewError(paper.KindInternal, "chromium pdf render failed", err)
	}
	return pdf, nil
}

// Close shuts the browser down if one is running.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.release != nil {
		e.release()
	}
	e.browser, e.release = nil, nil
	return nil
}

func (e *ChromiumEngine) browserContext() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		return e.browser
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if e.BrowserPath != "" {
		opts = append(opts, chromedp.ExecPath(e.BrowserPath))
	}
	opts = append(opts, chromedp.Flag("headless", e.Headless))
	opts = append(opts, allocatorFlags(e.Args)...)

	alloc, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browser, cancelBrowser := chromedp.NewContext(alloc)
	e.browser = browser
	e.release = func() {
		cancelBrowser()
		cancelAlloc()
	}
	return browser
}

func loadDocument(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}

func printTo(params *page.PrintToPDFParams, out *[]byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := params.Do(ctx)
		*out = data
		return err
	})
}

func printParams(opts PrintOptions) (*page.PrintToPDFParams, error) {
	name := strings.ToUpper(strings.TrimSpace(opts.PageSize))
	if name == "" {
		name = "A4"
	}
	sheet, ok := sheetsMM[name]
	if !ok {
		return nil, paper.NewError(paper.KindValidation, "unsupported page size: "+opts.PageSize, nil)
	}
	margin := opts.MarginPx
	if margin <= 0 {
		margin = DefaultPageMargin
	}
	marginIn := margin / cssPixelsPerInch

	return page.PrintToPDF().
		WithPrintBackground(true).
		WithLandscape(opts.Landscape).
		WithPaperWidth(sheet[0] / mmPerInch).
		WithPaperHeight(sheet[1] / mmPerInch).
		WithMarginTop(marginIn).
		WithMarginBottom(marginIn).
		WithMarginLeft(marginIn).
		WithMarginRight(marginIn), nil
}

// allocatorFlags turns "--name" and "--name=value" arguments into allocator
// flags.
func allocatorFlags(args []string) []chromedp.ExecAllocatorOption {
	var flags []chromedp.ExecAllocatorOption
	for _, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(strings.TrimSpace(arg), "-"), "=")
		switch {
		case name == "":
		case hasValue:
			flags = append(flags, chromedp.Flag(name, value))
		default:
			flags = append(flags, chromedp.Flag(name, true))
		}
	}
	return flags
}
