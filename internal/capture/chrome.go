package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Default viewport of live pages and sandboxes.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 900
)

// ChromeOptions configures a ChromeEngine.
type ChromeOptions struct {
	// ExecPath is the Chrome binary. Empty means CHROME_PATH, then the
	// chromedp lookup.
	ExecPath string
	Logger   *slog.Logger
}

// ChromeEngine is an Engine backed by a headless Chrome driven over the
// DevTools protocol. One browser process serves every page and sandbox;
// each one gets its own tab.
type ChromeEngine struct {
	browserCtx context.Context
	cancel     func()
	logger     *slog.Logger
}

// NewChromeEngine starts a headless browser. It lives until Close or until
// ctx is done.
func NewChromeEngine(ctx context.Context, opts ChromeOptions) (*ChromeEngine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(DefaultViewportWidth, DefaultViewportHeight),
	)
	execPath := opts.ExecPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_PATH")
	}
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	logger.Debug("browser started", "component", "capture", "exec_path", execPath)

	return &ChromeEngine{
		browserCtx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		logger: logger,
	}, nil
}

// Close shuts the browser down.
func (e *ChromeEngine) Close() error {
	e.cancel()
	return nil
}

// Open loads html into a new tab.
func (e *ChromeEngine) Open(ctx context.Context, html string) (LivePage, error) {
	t, err := e.newTab(ctx)
	if err != nil {
		return nil, err
	}
	if err := t.SetContent(ctx, html); err != nil {
		_ = t.Close()
		return nil, err
	}
	return &chromePage{tab: t}, nil
}

// NewSandbox opens an empty tab.
func (e *ChromeEngine) NewSandbox(ctx context.Context) (Sandbox, error) {
	t, err := e.newTab(ctx)
	if err != nil {
		return nil, err
	}
	return &chromeSandbox{tab: t}, nil
}

func (e *ChromeEngine) newTab(ctx context.Context) (*tab, error) {
	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	// The first Run creates the target and binds it to the context it is
	// given, so it must run on tabCtx itself.
	stop := context.AfterFunc(ctx, cancel)
	err := chromedp.Run(tabCtx, chromedp.EmulateViewport(DefaultViewportWidth, DefaultViewportHeight))
	stop()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return &tab{ctx: tabCtx, cancel: cancel}, nil
}

// tab is one browser target. Cancelling ctx closes it.
type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions in the tab, aborting them when ctx is done without
// closing the tab.
func (t *tab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (t *tab) SetContent(ctx context.Context, html string) error {
	var fontsReady bool
	err := t.run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady, awaitPromise),
	)
	if err != nil {
		return fmt.Errorf("failed to set content: %w", err)
	}
	return nil
}

func (t *tab) Close() error {
	t.cancel()
	return nil
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// chromePage is a LivePage in its own tab.
type chromePage struct {
	*tab
}

func (p *chromePage) HasRegion(ctx context.Context, selector string) (bool, error) {
	var found bool
	expr := fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
	if err := p.run(ctx, chromedp.Evaluate(expr, &found)); err != nil {
		return false, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	return found, nil
}

const neutralizeScript = `(() => {
	let el = document.querySelector(%s);
	let n = 0;
	while (el && el.nodeType === 1) {
		el.style.setProperty('transform', 'none', 'important');
		el = el.parentElement;
		n++;
	}
	return n;
})()`

func (p *chromePage) NeutralizeTransforms(ctx context.Context, selector string) error {
	var n int
	expr := fmt.Sprintf(neutralizeScript, jsString(selector))
	if err := p.run(ctx, chromedp.Evaluate(expr, &n)); err != nil {
		return fmt.Errorf("failed to reset transforms: %w", err)
	}
	return nil
}

const captureScript = `(() => {
	const attr = %s;
	const root = document.querySelector(%s);
	if (!root) return {html: "", styles: [], width: 0, height: 0};
	const els = [root, ...root.querySelectorAll('*')];
	const styles = els.map((el, i) => {
		el.setAttribute(attr, String(i));
		const cs = getComputedStyle(el);
		const style = {};
		for (let j = 0; j < cs.length; j++) {
			const prop = cs[j];
			style[prop] = cs.getPropertyValue(prop);
		}
		return style;
	});
	const rect = root.getBoundingClientRect();
	const html = root.outerHTML;
	els.forEach(el => el.removeAttribute(attr));
	return {html, styles, width: rect.width, height: rect.height};
})()`

func (p *chromePage) CaptureRegion(ctx context.Context, selector string) (*Snapshot, error) {
	var snap Snapshot
	expr := fmt.Sprintf(captureScript, jsString(CaptureIndexAttr), jsString(selector))
	if err := p.run(ctx, chromedp.Evaluate(expr, &snap)); err != nil {
		return nil, fmt.Errorf("failed to capture %s: %w", selector, err)
	}
	if snap.HTML == "" {
		return nil, ErrRegionNotFound
	}
	return &snap, nil
}

// resolveScript asks the engine for the used value of each color. A probe
// element handles what the style system understands; a 1x1 canvas handles
// the rest.
const resolveScript = `((values) => {
	const isRGB = c => /^rgba?\(/.test(c);
	const probe = document.createElement('div');
	probe.style.cssText = 'position:absolute;left:-10000px;top:-10000px;width:1px;height:1px;';
	document.body.appendChild(probe);
	const canvas = document.createElement('canvas');
	canvas.width = 1;
	canvas.height = 1;
	const g = canvas.getContext('2d', {willReadFrequently: true});
	const out = {};
	for (const v of values) {
		probe.style.color = '';
		probe.style.color = v;
		let c = probe.style.color ? getComputedStyle(probe).color : '';
		if (!isRGB(c) && g) {
			g.clearRect(0, 0, 1, 1);
			g.fillStyle = '#010203';
			g.fillStyle = v;
			if (g.fillStyle !== '#010203') {
				g.fillRect(0, 0, 1, 1);
				const d = g.getImageData(0, 0, 1, 1).data;
				c = d[3] === 255
					? 'rgb(' + d[0] + ', ' + d[1] + ', ' + d[2] + ')'
					: 'rgba(' + d[0] + ', ' + d[1] + ', ' + d[2] + ', ' + Math.round(d[3] / 255 * 1000) / 1000 + ')';
			}
		}
		if (isRGB(c)) out[v] = c;
	}
	probe.remove();
	return out;
})(%s)`

func (p *chromePage) ResolveColors(ctx context.Context, values []string) (map[string]string, error) {
	if len(values) == 0 {
		return map[string]string{}, nil
	}
	arg, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := p.run(ctx, chromedp.Evaluate(fmt.Sprintf(resolveScript, arg), &out)); err != nil {
		return nil, fmt.Errorf("failed to resolve colors: %w", err)
	}
	return out, nil
}

// chromeSandbox is a Sandbox in its own tab.
type chromeSandbox struct {
	*tab
}

const measureScript = `(() => {
	const el = document.body.firstElementChild || document.body;
	const rect = el.getBoundingClientRect();
	return {
		width: Math.max(rect.width, 1),
		height: Math.max(rect.height, document.body.scrollHeight, 1)
	};
})()`

type extent struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *chromeSandbox) Rasterize(ctx context.Context, scale float64) ([]byte, error) {
	var size extent
	if err := s.run(ctx, chromedp.Evaluate(measureScript, &size)); err != nil {
		return nil, fmt.Errorf("failed to measure sandbox: %w", err)
	}
	width, height := math.Ceil(size.Width), math.Ceil(size.Height)

	var buf []byte
	err := s.run(ctx,
		chromedp.EmulateViewport(int64(width), int64(min(height, DefaultViewportHeight))),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				WithFromSurface(true).
				WithClip(&page.Viewport{X: 0, Y: 0, Width: width, Height: height, Scale: scale}).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize sandbox: %w", err)
	}
	return buf, nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
