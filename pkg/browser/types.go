// pkg/browser/types.go
package browser

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors that Driver implementations wrap so callers can classify
// protocol failures with errors.Is regardless of the backend.
var (
	// ErrNoSuchWindow means the window was closed or never existed.
	ErrNoSuchWindow = errors.New("no such window")
	// ErrNoSuchElement means a presence query matched nothing.
	ErrNoSuchElement = errors.New("no such element")
	// ErrNoWindows means the browser has no open windows left.
	ErrNoWindows = errors.New("browser has no open windows")
)

// WindowHandle identifies one browser window or tab. Handles are produced by
// the Driver and may go stale at any time when the page or the user closes
// the window.
type WindowHandle string

// Element is an opaque reference to a DOM element owned by a Driver.
type Element interface {
	String() string
}

// Key is a special key that can be dispatched to an element.
type Key int

const (
	KeyEnter Key = iota
)

func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "Enter"
	default:
		return "Unknown"
	}
}

// LaunchOptions configures a new browser handle.
type LaunchOptions struct {
	Width     int
	Height    int
	Headless  bool
	Args      []string
	ExecPath  string
	RemoteURL string
	// Timeout bounds the startup health check.
	Timeout time.Duration
}

// Driver is the capability set the session layer needs from a remote
// browser-automation protocol. Implementations are not required to be safe for
// concurrent use; the session layer serializes all calls.
type Driver interface {
	// WindowHandles lists the currently open windows in creation order.
	WindowHandles(ctx context.Context) ([]WindowHandle, error)
	// CurrentWindow returns the active window. It fails with ErrNoSuchWindow
	// when the active window has been closed.
	CurrentWindow(ctx context.Context) (WindowHandle, error)
	SwitchWindow(ctx context.Context, w WindowHandle) error
	SetWindowSize(ctx context.Context, width, height int) error
	Navigate(ctx context.Context, url string) error

	// FindElement performs a single, non-waiting presence query in the active
	// window and fails with ErrNoSuchElement when nothing matches.
	FindElement(ctx context.Context, loc Locator) (Element, error)
	// FindElements returns every current match, possibly none.
	FindElements(ctx context.Context, loc Locator) ([]Element, error)

	Click(ctx context.Context, el Element) error
	SendKeys(ctx context.Context, el Element, text string) error
	PressKey(ctx context.Context, el Element, key Key) error

	// Quit releases the browser. The Driver is unusable afterwards.
	Quit(ctx context.Context) error
}

// Launcher acquires new Driver instances.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Driver, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, opts LaunchOptions) (Driver, error)

func (f LauncherFunc) Launch(ctx context.Context, opts LaunchOptions) (Driver, error) {
	return f(ctx, opts)
}
