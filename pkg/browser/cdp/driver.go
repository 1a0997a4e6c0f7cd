// pkg/browser/cdp/driver.go
package cdp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
)

// Element is a DOM node resolved in one tab.
type Element struct {
	node    *cdp.Node
	window  browser.WindowHandle
	locator browser.Locator
}

func (e *Element) String() string {
	return fmt.Sprintf("<%s> %s in %s", e.node.LocalName, e.locator, e.window)
}

// Driver implements browser.Driver over chromedp. Every page target of the
// browser is a window; the active window is tracked locally because the
// DevTools protocol has no notion of one.
type Driver struct {
	mu sync.Mutex

	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	// tabs holds one chromedp context per attached target. They are released
	// together with the browser.
	tabs   map[target.ID]context.Context
	active target.ID
	logger *zap.Logger
}

var _ browser.Driver = (*Driver)(nil)

func newDriver(browserCtx context.Context, browserCancel, allocCancel context.CancelFunc, first target.ID, logger *zap.Logger) *Driver {
	return &Driver{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		tabs:          map[target.ID]context.Context{first: browserCtx},
		active:        first,
		logger:        logger,
	}
}

// run executes actions in tab and aborts when ctx is done. Cancelling the
// derived context does not close the tab.
func run(ctx, tab context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// pages lists the open page targets.
func (d *Driver) pages(ctx context.Context) ([]browser.WindowHandle, error) {
	var infos []*target.Info
	err := run(ctx, d.browserCtx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		infos, err = chromedp.Targets(c)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("listing targets: %w", err)
	}
	return PageHandles(infos), nil
}

// PageHandles keeps the page targets of infos, in order, as window handles.
func PageHandles(infos []*target.Info) []browser.WindowHandle {
	out := make([]browser.WindowHandle, 0, len(infos))
	for _, info := range infos {
		if info.Type == "page" {
			out = append(out, browser.WindowHandle(info.TargetID))
		}
	}
	return out
}

func contains(handles []browser.WindowHandle, w browser.WindowHandle) bool {
	for _, h := range handles {
		if h == w {
			return true
		}
	}
	return false
}

// tab returns the context attached to id, creating it on first use.
func (d *Driver) tab(id target.ID) context.Context {
	if t, ok := d.tabs[id]; ok {
		return t
	}
	// The cancel func is dropped on purpose: cancelling would close the
	// target, and the context ends with browserCtx anyway.
	t, _ := chromedp.NewContext(d.browserCtx, chromedp.WithTargetID(id))
	d.tabs[id] = t
	return t
}

// prune drops the contexts of targets that are no longer open.
func (d *Driver) prune(open []browser.WindowHandle) {
	for id := range d.tabs {
		if !contains(open, browser.WindowHandle(id)) {
			delete(d.tabs, id)
		}
	}
}

// activeTab returns the active tab, or ErrNoSuchWindow when it was closed.
func (d *Driver) activeTab(ctx context.Context) (context.Context, browser.WindowHandle, error) {
	handles, err := d.pages(ctx)
	if err != nil {
		return nil, "", err
	}
	d.prune(handles)
	w := browser.WindowHandle(d.active)
	if !contains(handles, w) {
		return nil, "", fmt.Errorf("window %s: %w", w, browser.ErrNoSuchWindow)
	}
	return d.tab(d.active), w, nil
}

func (d *Driver) WindowHandles(ctx context.Context) ([]browser.WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	handles, err := d.pages(ctx)
	if err != nil {
		return nil, err
	}
	d.prune(handles)
	return handles, nil
}

func (d *Driver) CurrentWindow(ctx context.Context) (browser.WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, w, err := d.activeTab(ctx)
	return w, err
}

func (d *Driver) SwitchWindow(ctx context.Context, w browser.WindowHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	handles, err := d.pages(ctx)
	if err != nil {
		return err
	}
	d.prune(handles)
	if !contains(handles, w) {
		return fmt.Errorf("switch to %s: %w", w, browser.ErrNoSuchWindow)
	}
	id := target.ID(w)
	if err := run(ctx, d.tab(id), page.BringToFront()); err != nil {
		return fmt.Errorf("switch to %s: %w", w, err)
	}
	d.active = id
	return nil
}

func (d *Driver) SetWindowSize(ctx context.Context, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	tab, _, err := d.activeTab(ctx)
	if err != nil {
		return err
	}
	return run(ctx, tab, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	tab, _, err := d.activeTab(ctx)
	if err != nil {
		return err
	}
	return run(ctx, tab, chromedp.Navigate(url))
}

// query resolves every current match of loc in the active tab without waiting.
func (d *Driver) query(ctx context.Context, loc browser.Locator) ([]*Element, error) {
	sel, by, err := Selector(loc)
	if err != nil {
		return nil, err
	}
	tab, w, err := d.activeTab(ctx)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	if err := run(ctx, tab, chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("querying %s: %w", loc, err)
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Element{node: n, window: w, locator: loc})
	}
	return out, nil
}

func (d *Driver) FindElement(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	els, err := d.query(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%s: %w", loc, browser.ErrNoSuchElement)
	}
	return els[0], nil
}

func (d *Driver) FindElements(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	els, err := d.query(ctx, loc)
	if err != nil {
		return nil, err
	}
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

var errForeignElement = errors.New("element was not produced by the cdp driver")

// element unwraps el and returns the tab it lives in. It never attaches to
// a target: a window pruned since the lookup yields ErrNoSuchWindow.
func (d *Driver) element(el browser.Element) (*Element, context.Context, error) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return nil, nil, errForeignElement
	}
	tab, ok := d.tabs[target.ID(e.window)]
	if !ok {
		return nil, nil, fmt.Errorf("window %s: %w", e.window, browser.ErrNoSuchWindow)
	}
	return e, tab, nil
}

func (d *Driver) Click(ctx context.Context, el browser.Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, tab, err := d.element(el)
	if err != nil {
		return err
	}
	return run(ctx, tab, chromedp.MouseClickNode(e.node))
}

func (d *Driver) SendKeys(ctx context.Context, el browser.Element, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, tab, err := d.element(el)
	if err != nil {
		return err
	}
	return run(ctx, tab, chromedp.SendKeys([]cdp.NodeID{e.node.NodeID}, text, chromedp.ByNodeID))
}

func (d *Driver) PressKey(ctx context.Context, el browser.Element, key browser.Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, tab, err := d.element(el)
	if err != nil {
		return err
	}
	seq, err := keySequence(key)
	if err != nil {
		return err
	}
	return run(ctx, tab, chromedp.SendKeys([]cdp.NodeID{e.node.NodeID}, seq, chromedp.ByNodeID))
}

func keySequence(key browser.Key) (string, error) {
	switch key {
	case browser.KeyEnter:
		return kb.Enter, nil
	default:
		return "", fmt.Errorf("unsupported key %s", key)
	}
}

// Quit closes the browser gracefully and releases the allocator.
func (d *Driver) Quit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.browserCancel == nil {
		return nil
	}
	err := chromedp.Cancel(d.browserCtx)
	d.browserCancel()
	d.allocCancel()
	d.browserCancel = nil
	d.tabs = nil
	d.logger.Info("Browser closed.")
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}
