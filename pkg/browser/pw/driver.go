// pkg/browser/pw/driver.go
package pw

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

// actionTimeoutMs bounds playwright's own auto-wait on actions. Presence has
// already been established by the caller.
const actionTimeoutMs = 5000

// Element is one match of a locator in a page.
type Element struct {
	loc     playwright.Locator
	window  browser.WindowHandle
	locator browser.Locator
	index   int
}

func (e *Element) String() string {
	return fmt.Sprintf("%s[%d] in %s", e.locator, e.index, e.window)
}

// registry assigns stable handles to pages, which have no identifier of
// their own in playwright.
type registry struct {
	ids   map[playwright.Page]browser.WindowHandle
	newID func() string
}

func newRegistry() *registry {
	return &registry{ids: make(map[playwright.Page]browser.WindowHandle), newID: uuid.NewString}
}

// sync reconciles the registry with pages, in order, forgetting closed pages.
func (r *registry) sync(pages []playwright.Page) []browser.WindowHandle {
	seen := make(map[playwright.Page]bool, len(pages))
	out := make([]browser.WindowHandle, 0, len(pages))
	for _, p := range pages {
		if p.IsClosed() {
			continue
		}
		seen[p] = true
		id, ok := r.ids[p]
		if !ok {
			id = browser.WindowHandle(r.newID())
			r.ids[p] = id
		}
		out = append(out, id)
	}
	for p := range r.ids {
		if !seen[p] {
			delete(r.ids, p)
		}
	}
	return out
}

func (r *registry) page(w browser.WindowHandle) (playwright.Page, bool) {
	for p, id := range r.ids {
		if id == w {
			return p, true
		}
	}
	return nil, false
}

// Driver implements browser.Driver over playwright. The pages of a single
// browser context are the windows.
type Driver struct {
	mu sync.Mutex

	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	pages   *registry
	active  browser.WindowHandle
	logger  *zap.Logger
}

var _ browser.Driver = (*Driver)(nil)

// refresh re-reads the open pages. It must be called with mu held.
func (d *Driver) refresh() []browser.WindowHandle {
	return d.pages.sync(d.context.Pages())
}

// activePage returns the active page or ErrNoSuchWindow when it was closed.
func (d *Driver) activePage() (playwright.Page, error) {
	d.refresh()
	p, ok := d.pages.page(d.active)
	if !ok {
		return nil, fmt.Errorf("window %s: %w", d.active, browser.ErrNoSuchWindow)
	}
	return p, nil
}

func (d *Driver) WindowHandles(ctx context.Context) ([]browser.WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refresh(), nil
}

func (d *Driver) CurrentWindow(ctx context.Context) (browser.WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.activePage(); err != nil {
		return "", err
	}
	return d.active, nil
}

func (d *Driver) SwitchWindow(ctx context.Context, w browser.WindowHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refresh()
	p, ok := d.pages.page(w)
	if !ok {
		return fmt.Errorf("switch to %s: %w", w, browser.ErrNoSuchWindow)
	}
	if err := p.BringToFront(); err != nil {
		return fmt.Errorf("switch to %s: %w", w, err)
	}
	d.active = w
	return nil
}

func (d *Driver) SetWindowSize(ctx context.Context, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.activePage()
	if err != nil {
		return err
	}
	return p.SetViewportSize(width, height)
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.activePage()
	if err != nil {
		return err
	}
	_, err = p.Goto(url)
	return err
}

func (d *Driver) query(loc browser.Locator) ([]*Element, error) {
	sel, err := Selector(loc)
	if err != nil {
		return nil, err
	}
	p, err := d.activePage()
	if err != nil {
		return nil, err
	}
	all, err := p.Locator(sel).All()
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", loc, err)
	}
	out := make([]*Element, 0, len(all))
	for i, l := range all {
		out = append(out, &Element{loc: l, window: d.active, locator: loc, index: i})
	}
	return out, nil
}

func (d *Driver) FindElement(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	els, err := d.query(loc)
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
	els, err := d.query(loc)
	if err != nil {
		return nil, err
	}
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

var errForeignElement = errors.New("element was not produced by the playwright driver")

func unwrap(el browser.Element) (*Element, error) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return nil, errForeignElement
	}
	return e, nil
}

func (d *Driver) Click(ctx context.Context, el browser.Element) error {
	e, err := unwrap(el)
	if err != nil {
		return err
	}
	return e.loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(actionTimeoutMs)})
}

func (d *Driver) SendKeys(ctx context.Context, el browser.Element, text string) error {
	e, err := unwrap(el)
	if err != nil {
		return err
	}
	return e.loc.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{Timeout: playwright.Float(actionTimeoutMs)})
}

func (d *Driver) PressKey(ctx context.Context, el browser.Element, key browser.Key) error {
	e, err := unwrap(el)
	if err != nil {
		return err
	}
	if key != browser.KeyEnter {
		return fmt.Errorf("unsupported key %s", key)
	}
	return e.loc.Press("Enter", playwright.LocatorPressOptions{Timeout: playwright.Float(actionTimeoutMs)})
}

// Quit closes the browser and stops the playwright driver process.
func (d *Driver) Quit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pw == nil {
		return nil
	}
	var errs []error
	if err := d.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
	}
	d.pw = nil
	d.logger.Info("Browser closed.")
	return errors.Join(errs...)
}

// Selector translates a locator into a playwright selector string.
func Selector(loc browser.Locator) (string, error) {
	v := loc.Value
	switch loc.Strategy {
	case browser.ByID:
		return "css=[id=" + browser.CSSString(v) + "]", nil
	case browser.ByClassName:
		return "css=[class~=" + browser.CSSString(v) + "]", nil
	case browser.ByTagName, browser.ByCSSSelector:
		return "css=" + v, nil
	case browser.ByXPath:
		return "xpath=" + v, nil
	case browser.ByLinkText:
		return "xpath=" + browser.LinkTextXPath(v, false), nil
	case browser.ByPartialLinkText:
		return "xpath=" + browser.LinkTextXPath(v, true), nil
	default:
		return "", fault.Configuration("pw_selector", "strategy",
			fmt.Sprintf("%s is not a valid locator strategy", loc.Strategy))
	}
}
