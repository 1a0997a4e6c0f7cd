// pkg/session/manager.go
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/fault"
	"github.com/xkilldash9x/tabwarden/pkg/ledger"
)

// WindowStatus is the tri-state result of every window operation.
type WindowStatus int

const (
	// WindowOK means the requested window is now active.
	WindowOK WindowStatus = iota
	// WindowMissing means the window is gone. Callers are expected to recover.
	WindowMissing
	// WindowFailed means the protocol itself failed.
	WindowFailed
)

func (s WindowStatus) String() string {
	switch s {
	case WindowOK:
		return "ok"
	case WindowMissing:
		return "missing"
	case WindowFailed:
		return "failed"
	default:
		return fmt.Sprintf("WindowStatus(%d)", int(s))
	}
}

// ErrNotStarted is wrapped by failures caused by the absence of a live browser.
var ErrNotStarted = errors.New("no live browser session")

// WindowSize is the configured browser window size.
type WindowSize struct {
	Width  int
	Height int
}

// Options configures a Manager.
type Options struct {
	Size     WindowSize
	Launch   browser.LaunchOptions
	Launcher browser.Launcher
	Reporter *ledger.Reporter
	Logger   *zap.Logger
}

// Manager owns the single live browser handle, the home window, and the
// window-switch protocol. It is not safe for concurrent use: it assumes it is
// the only mutator of the active window.
type Manager struct {
	launcher browser.Launcher
	launch   browser.LaunchOptions
	size     WindowSize
	reporter *ledger.Reporter
	base     *zap.Logger
	logger   *zap.Logger

	id     string
	driver browser.Driver
	home   browser.WindowHandle
	known  []browser.WindowHandle
}

// NewManager validates the options and returns a stopped Manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Launcher == nil {
		return nil, fault.Configuration("new_session", "launcher", "a browser launcher is required")
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		return nil, fault.Configuration("new_session", "window_size",
			fmt.Sprintf("width and height must be positive, got %dx%d", opts.Size.Width, opts.Size.Height))
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = ledger.NewReporter(ledger.New(), nil, logger)
	}
	launch := opts.Launch
	launch.Width, launch.Height = opts.Size.Width, opts.Size.Height

	return &Manager{
		launcher: opts.Launcher,
		launch:   launch,
		size:     opts.Size,
		reporter: reporter,
		base:     logger.Named("session"),
		logger:   logger.Named("session"),
	}, nil
}

// ID returns the identifier of the current browser handle, empty when stopped.
func (m *Manager) ID() string { return m.id }

// Started reports whether a live browser handle is held.
func (m *Manager) Started() bool { return m.driver != nil }

// HomeWindow returns the window created when the session started.
func (m *Manager) HomeWindow() browser.WindowHandle { return m.home }

// Size returns the configured window size.
func (m *Manager) Size() WindowSize { return m.size }

// Reporter returns the reporter failures are written to.
func (m *Manager) Reporter() *ledger.Reporter { return m.reporter }

// Driver exposes the live handle to the interaction engine. It is nil when
// the session is stopped.
func (m *Manager) Driver() browser.Driver { return m.driver }

// Start acquires a new browser handle, applies the window size and records the
// home window. A launch failure is reported with a prompt and returned as a
// *fault.EnvironmentFailure; it never panics. Starting an already started
// session is a caller bug.
func (m *Manager) Start(ctx context.Context) error {
	if m.driver != nil {
		return fault.Configuration("start", "", "session already holds a live browser; use Restart")
	}

	m.logger.Info("Starting new browser session...")
	d, err := m.launcher.Launch(ctx, m.launch)
	if err != nil {
		ef := fault.Environment("start", "Failed to start a new driver", err)
		m.reporter.ReportWithPrompt(ctx, ef, "Failed to start a new driver. Try closing and reopening the program.")
		return ef
	}

	if err := d.SetWindowSize(ctx, m.size.Width, m.size.Height); err != nil {
		m.logger.Warn("Could not apply window size.", zap.Int("width", m.size.Width), zap.Int("height", m.size.Height), zap.Error(err))
		m.reporter.ReportSilently(fault.Environment("set_window_size", "Failed to apply window size", err))
	}

	home, err := d.CurrentWindow(ctx)
	if err != nil {
		ef := fault.Environment("start", "Failed to read the initial window", err)
		m.reporter.ReportWithPrompt(ctx, ef, "Failed to start a new driver. Try closing and reopening the program.")
		if qerr := d.Quit(ctx); qerr != nil {
			m.reporter.ReportSilently(fault.Environment("stop", "", qerr))
		}
		return ef
	}

	m.driver = d
	m.home = home
	m.known = []browser.WindowHandle{home}
	m.id = uuid.NewString()
	m.logger = m.base.With(zap.String("session_id", m.id[:8]))
	m.logger.Info("Browser session started.", zap.String("home_window", string(home)))
	return nil
}

// Stop closes the browser handle. Failures are recorded silently because
// nothing useful can be done about them. The handle is dropped either way.
func (m *Manager) Stop(ctx context.Context) error {
	d := m.driver
	m.driver = nil
	m.home = ""
	m.known = nil
	if d == nil {
		return nil
	}

	m.logger.Info("Stopping browser session.")
	if err := d.Quit(ctx); err != nil {
		ef := fault.Environment("stop", "Failed to stop the driver", err)
		m.reporter.ReportSilently(ef)
		return ef
	}
	return nil
}

// Restart stops the current handle (if any) and starts a fresh one. Window
// handles from the previous browser are invalid afterwards.
func (m *Manager) Restart(ctx context.Context) error {
	// A failed quit is already in the ledger; the new handle still gets started.
	_ = m.Stop(ctx)
	return m.Start(ctx)
}

// Windows lists the open windows and refreshes the set of known handles.
func (m *Manager) Windows(ctx context.Context) ([]browser.WindowHandle, error) {
	if m.driver == nil {
		return nil, fault.Environment("windows", "", ErrNotStarted)
	}
	handles, err := m.driver.WindowHandles(ctx)
	if err != nil {
		ef := fault.Environment("windows", "Failed to list windows", err)
		m.reporter.ReportSilently(ef)
		return nil, ef
	}
	m.known = handles
	return handles, nil
}

// Known returns the window handles seen by the last listing.
func (m *Manager) Known() []browser.WindowHandle {
	out := make([]browser.WindowHandle, len(m.known))
	copy(out, m.known)
	return out
}

// SwitchTo makes target the active window. It does nothing when target is
// already active. A vanished target yields WindowMissing, whether or not the
// previously active window still exists. SwitchTo never recovers on its own,
// see RecoverToAnyWindow.
func (m *Manager) SwitchTo(ctx context.Context, target browser.WindowHandle) (WindowStatus, error) {
	if m.driver == nil {
		ef := fault.Environment("switch_window", "Failed to switch windows", ErrNotStarted)
		m.reporter.ReportWithPrompt(ctx, ef, "No browser is running. Start a new webdriver?")
		return WindowFailed, ef
	}

	current, err := m.driver.CurrentWindow(ctx)
	switch {
	case errors.Is(err, browser.ErrNoSuchWindow):
		// The active window was closed. Its identity is unknown, so the switch
		// to target is still requested.
		m.logger.Debug("Active window is gone.", zap.Error(err))
		current = ""
	case err != nil:
		ef := fault.Environment("switch_window", "Failed to read the active window", err)
		m.reporter.ReportWithPrompt(ctx, ef, fmt.Sprintf("Failed to switch to handle %s.", target))
		return WindowFailed, ef
	case current == target:
		return WindowOK, nil
	}

	if err := m.driver.SwitchWindow(ctx, target); err != nil {
		ef := fault.Environment("switch_window", fmt.Sprintf("Failed to switch to handle %s", target), err)
		m.reporter.ReportWithPrompt(ctx, ef, fmt.Sprintf("Failed to switch to handle %s.", target))
		if errors.Is(err, browser.ErrNoSuchWindow) {
			return WindowMissing, ef
		}
		return WindowFailed, ef
	}
	m.logger.Debug("Switched window.", zap.String("from", string(current)), zap.String("to", string(target)))
	return WindowOK, nil
}

// RecoverToAnyWindow switches to the first open window. With no windows left
// it returns WindowMissing wrapping browser.ErrNoWindows and the caller has to
// decide whether to Restart.
func (m *Manager) RecoverToAnyWindow(ctx context.Context) (browser.WindowHandle, WindowStatus, error) {
	const prompt = "Failed to switch to any window. Start new webdriver?"
	if m.driver == nil {
		ef := fault.Environment("recover_window", "", ErrNotStarted)
		m.reporter.ReportWithPrompt(ctx, ef, prompt)
		return "", WindowFailed, ef
	}

	handles, err := m.driver.WindowHandles(ctx)
	if err != nil {
		ef := fault.Environment("recover_window", "Failed to list windows", err)
		m.reporter.ReportWithPrompt(ctx, ef, prompt)
		return "", WindowFailed, ef
	}
	m.known = handles
	if len(handles) == 0 {
		ef := fault.Environment("recover_window", "", browser.ErrNoWindows)
		m.reporter.ReportWithPrompt(ctx, ef, prompt)
		return "", WindowMissing, ef
	}

	first := handles[0]
	if err := m.driver.SwitchWindow(ctx, first); err != nil {
		ef := fault.Environment("recover_window", fmt.Sprintf("Failed to switch to handle %s", first), err)
		m.reporter.ReportWithPrompt(ctx, ef, prompt)
		if errors.Is(err, browser.ErrNoSuchWindow) {
			return "", WindowMissing, ef
		}
		return "", WindowFailed, ef
	}
	m.logger.Info("Recovered to first open window.", zap.String("window", string(first)))
	return first, WindowOK, nil
}

// Ensure makes target active, falling back to any open window when target has
// disappeared. It returns the window the caller is now
// in, which differs from target after a fallback.
func (m *Manager) Ensure(ctx context.Context, target browser.WindowHandle) (browser.WindowHandle, error) {
	status, err := m.SwitchTo(ctx, target)
	switch status {
	case WindowOK:
		return target, nil
	case WindowMissing:
		w, st, rerr := m.RecoverToAnyWindow(ctx)
		if st != WindowOK {
			return "", rerr
		}
		return w, nil
	default:
		return "", err
	}
}
