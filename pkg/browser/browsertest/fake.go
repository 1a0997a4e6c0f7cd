// pkg/browser/browsertest/fake.go
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
)

// Element is the fake's element handle.
type Element struct {
	ID      string
	Locator browser.Locator
	Window  browser.WindowHandle
}

func (e *Element) String() string { return "fake-element:" + e.ID }

// Calls counts every Driver method invocation.
type Calls struct {
	WindowHandles int
	CurrentWindow int
	SwitchWindow  int
	SetWindowSize int
	Navigate      int
	FindElement   int
	FindElements  int
	Click         int
	SendKeys      int
	PressKey      int
	Quit          int
}

// Driver is an in-memory browser.Driver. Windows and elements are scripted by
// the test; per-method failures are injected through the Fail* fields.
type Driver struct {
	mu sync.Mutex

	windows []browser.WindowHandle
	active  browser.WindowHandle
	// elements maps a window to the elements present in it, keyed by locator.
	elements map[browser.WindowHandle]map[browser.Locator][]*Element
	// appearAfter delays presence: the locator matches only after this many queries.
	appearAfter map[browser.Locator]int
	nextID      int

	Width, Height int
	URLs          []string
	Typed         []string
	Pressed       []browser.Key
	Clicked       []*Element
	Calls         Calls

	FailSwitch       error
	FailCurrent      error
	FailFind         error
	FailFindElements error
	FailClick        error
	FailSendKeys     error
	FailPressKey     error
	FailNavigate     error
	FailQuit         error
	FailSetSize      error
}

var _ browser.Driver = (*Driver)(nil)

// NewDriver returns a fake with the given windows open; the first is active.
func NewDriver(windows ...browser.WindowHandle) *Driver {
	d := &Driver{
		elements:    make(map[browser.WindowHandle]map[browser.Locator][]*Element),
		appearAfter: make(map[browser.Locator]int),
	}
	for _, w := range windows {
		d.OpenWindow(w)
	}
	if len(windows) > 0 {
		d.active = windows[0]
	}
	return d
}

// OpenWindow adds a window without activating it.
func (d *Driver) OpenWindow(w browser.WindowHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.windows = append(d.windows, w)
}

// CloseWindow removes a window, as if the user closed the tab. The active
// window is left dangling when it is the one closed.
func (d *Driver) CloseWindow(w browser.WindowHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, h := range d.windows {
		if h == w {
			d.windows = append(d.windows[:i], d.windows[i+1:]...)
			break
		}
	}
	delete(d.elements, w)
}

// Activate sets the active window directly, without counting a switch.
func (d *Driver) Activate(w browser.WindowHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = w
}

// Active returns the active window.
func (d *Driver) Active() browser.WindowHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// AddElement places count matching elements for loc in window w.
func (d *Driver) AddElement(w browser.WindowHandle, loc browser.Locator, count int) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	byLoc, ok := d.elements[w]
	if !ok {
		byLoc = make(map[browser.Locator][]*Element)
		d.elements[w] = byLoc
	}
	added := make([]*Element, 0, count)
	for i := 0; i < count; i++ {
		d.nextID++
		el := &Element{ID: fmt.Sprintf("el-%d", d.nextID), Locator: loc, Window: w}
		byLoc[loc] = append(byLoc[loc], el)
		added = append(added, el)
	}
	return added
}

// AppearAfter makes loc invisible to the first n presence queries.
func (d *Driver) AppearAfter(loc browser.Locator, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.appearAfter[loc] = n
}

// Snapshot returns a copy of the call counters.
func (d *Driver) Snapshot() Calls {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Calls
}

func (d *Driver) hasWindow(w browser.WindowHandle) bool {
	for _, h := range d.windows {
		if h == w {
			return true
		}
	}
	return false
}

func (d *Driver) WindowHandles(ctx context.Context) ([]browser.WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.WindowHandles++
	out := make([]browser.WindowHandle, len(d.windows))
	copy(out, d.windows)
	return out, nil
}

func (d *Driver) CurrentWindow(ctx context.Context) (browser.WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.CurrentWindow++
	if d.FailCurrent != nil {
		return "", d.FailCurrent
	}
	if !d.hasWindow(d.active) {
		return "", fmt.Errorf("current window %q: %w", d.active, browser.ErrNoSuchWindow)
	}
	return d.active, nil
}

func (d *Driver) SwitchWindow(ctx context.Context, w browser.WindowHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.SwitchWindow++
	if d.FailSwitch != nil {
		return d.FailSwitch
	}
	if !d.hasWindow(w) {
		return fmt.Errorf("switch to %q: %w", w, browser.ErrNoSuchWindow)
	}
	d.active = w
	return nil
}

func (d *Driver) SetWindowSize(ctx context.Context, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.SetWindowSize++
	if d.FailSetSize != nil {
		return d.FailSetSize
	}
	d.Width, d.Height = width, height
	return nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.Navigate++
	if d.FailNavigate != nil {
		return d.FailNavigate
	}
	d.URLs = append(d.URLs, url)
	return nil
}

func (d *Driver) FindElement(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.FindElement++
	if d.FailFind != nil {
		return nil, d.FailFind
	}
	if n := d.appearAfter[loc]; n > 0 {
		d.appearAfter[loc] = n - 1
		return nil, fmt.Errorf("%s: %w", loc, browser.ErrNoSuchElement)
	}
	matches := d.elements[d.active][loc]
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: %w", loc, browser.ErrNoSuchElement)
	}
	return matches[0], nil
}

func (d *Driver) FindElements(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.FindElements++
	if d.FailFindElements != nil {
		return nil, d.FailFindElements
	}
	matches := d.elements[d.active][loc]
	out := make([]browser.Element, 0, len(matches))
	for _, m := range matches {
		out = append(out, m)
	}
	return out, nil
}

func (d *Driver) Click(ctx context.Context, el browser.Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.Click++
	if d.FailClick != nil {
		return d.FailClick
	}
	if fe, ok := el.(*Element); ok {
		d.Clicked = append(d.Clicked, fe)
	}
	return nil
}

func (d *Driver) SendKeys(ctx context.Context, el browser.Element, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.SendKeys++
	if d.FailSendKeys != nil {
		return d.FailSendKeys
	}
	d.Typed = append(d.Typed, text)
	return nil
}

func (d *Driver) PressKey(ctx context.Context, el browser.Element, key browser.Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.PressKey++
	if d.FailPressKey != nil {
		return d.FailPressKey
	}
	d.Pressed = append(d.Pressed, key)
	return nil
}

func (d *Driver) Quit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.Quit++
	return d.FailQuit
}

// Launcher hands out scripted Drivers in order and records launch options.
type Launcher struct {
	mu       sync.Mutex
	drivers  []*Driver
	Launched []browser.LaunchOptions
	// Fail, when set, is returned by every Launch call.
	Fail error
}

var _ browser.Launcher = (*Launcher)(nil)

// NewLauncher returns a Launcher that serves the given drivers in order. When
// it runs out it creates a fresh single-window Driver.
func NewLauncher(drivers ...*Driver) *Launcher {
	return &Launcher{drivers: drivers}
}

func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Driver, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Launched = append(l.Launched, opts)
	if l.Fail != nil {
		return nil, l.Fail
	}
	if len(l.drivers) == 0 {
		return NewDriver(browser.WindowHandle(fmt.Sprintf("window-%d", len(l.Launched)))), nil
	}
	d := l.drivers[0]
	l.drivers = l.drivers[1:]
	return d, nil
}

// Count returns how many launches were attempted.
func (l *Launcher) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Launched)
}
