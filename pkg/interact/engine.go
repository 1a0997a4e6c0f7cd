// pkg/interact/engine.go
package interact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/fault"
	"github.com/xkilldash9x/tabwarden/pkg/session"
)

// Default timings.
const (
	DefaultTimeout      = 5 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Config tunes the engine.
type Config struct {
	DefaultTimeout time.Duration
	PollInterval   time.Duration
}

// Engine performs element operations with a bounded wait. Runtime failures are
// reported through the session's reporter and returned as
// *fault.EnvironmentFailure; malformed requests return
// *fault.ConfigurationError without touching the browser.
type Engine struct {
	manager *session.Manager
	cfg     Config
	logger  *zap.Logger
}

// NewEngine builds an engine over manager.
func NewEngine(manager *session.Manager, cfg Config, logger *zap.Logger) *Engine {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{manager: manager, cfg: cfg, logger: logger.Named("interact")}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// enter switches to window (with fallback) and returns the live driver.
func (e *Engine) enter(ctx context.Context, window browser.WindowHandle) (browser.Driver, error) {
	if _, err := e.manager.Ensure(ctx, window); err != nil {
		return nil, err
	}
	d := e.manager.Driver()
	if d == nil {
		return nil, fault.Environment("switch_window", "", session.ErrNotStarted)
	}
	return d, nil
}

func (e *Engine) report(ctx context.Context, op, prompt string, err error) error {
	ef := fault.Environment(op, prompt, err)
	e.manager.Reporter().ReportWithPrompt(ctx, ef, prompt)
	return ef
}

// FindElement waits up to the request timeout for one element to be present.
func (e *Engine) FindElement(ctx context.Context, req FindRequest) (browser.Element, error) {
	const op = "find_element"
	if err := req.Validate(op); err != nil {
		return nil, err
	}
	if req.Locator.Value == "" {
		return nil, ErrEmptyLocator
	}
	d, err := e.enter(ctx, req.Window)
	if err != nil {
		return nil, err
	}
	return e.waitForPresence(ctx, d, op, req)
}

// FindElements waits for at least one match and then returns every match.
func (e *Engine) FindElements(ctx context.Context, req FindRequest) ([]browser.Element, error) {
	const op = "find_elements"
	if err := req.Validate(op); err != nil {
		return nil, err
	}
	if req.Locator.Value == "" {
		return nil, ErrEmptyLocator
	}
	d, err := e.enter(ctx, req.Window)
	if err != nil {
		return nil, err
	}
	if _, err := e.waitForPresence(ctx, d, op, req); err != nil {
		return nil, err
	}
	all, err := d.FindElements(ctx, req.Locator)
	if err != nil {
		return nil, e.report(ctx, op, fmt.Sprintf("Failed to find %s", req.FailureMessage), err)
	}
	return all, nil
}

// waitForPresence polls the driver until the locator matches or the timeout
// elapses. The first query always runs, even with a zero timeout. Only
// "no such element" is retried; any other driver error ends the wait.
func (e *Engine) waitForPresence(ctx context.Context, d browser.Driver, op string, req FindRequest) (browser.Element, error) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = e.cfg.DefaultTimeout
	}
	prompt := fmt.Sprintf("Failed to find %s", req.FailureMessage)
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++
		el, err := d.FindElement(ctx, req.Locator)
		if err == nil {
			e.logger.Debug("Element present.", zap.Stringer("locator", req.Locator), zap.Int("attempts", attempts))
			return el, nil
		}
		if !errors.Is(err, browser.ErrNoSuchElement) {
			return nil, e.report(ctx, op, prompt, err)
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			timeoutErr := fmt.Errorf("%s not present after %s (%d queries): %w", req.Locator, timeout, attempts, err)
			return nil, e.report(ctx, op, prompt, timeoutErr)
		case <-ctx.Done():
			return nil, e.report(ctx, op, prompt, ctx.Err())
		}
	}
}

// Click clicks el in window.
func (e *Engine) Click(ctx context.Context, req ActionRequest) error {
	const op = "click"
	if err := req.Validate(op); err != nil {
		return err
	}
	d, err := e.enter(ctx, req.Window)
	if err != nil {
		return err
	}
	if err := d.Click(ctx, req.Element); err != nil {
		return e.report(ctx, op, fmt.Sprintf("Failed to click %s", req.FailureMessage), err)
	}
	return nil
}

// EnterText types text into el in window.
func (e *Engine) EnterText(ctx context.Context, req ActionRequest, text string) error {
	const op = "enter_text"
	if err := req.Validate(op); err != nil {
		return err
	}
	d, err := e.enter(ctx, req.Window)
	if err != nil {
		return err
	}
	if err := d.SendKeys(ctx, req.Element, text); err != nil {
		return e.report(ctx, op, fmt.Sprintf("Failed to enter text into %s", req.FailureMessage), err)
	}
	return nil
}

// PressEnter dispatches the Enter key to el in window.
func (e *Engine) PressEnter(ctx context.Context, req ActionRequest) error {
	const op = "press_enter"
	if err := req.Validate(op); err != nil {
		return err
	}
	d, err := e.enter(ctx, req.Window)
	if err != nil {
		return err
	}
	if err := d.PressKey(ctx, req.Element, browser.KeyEnter); err != nil {
		return e.report(ctx, op, fmt.Sprintf("Failed to press enter on %s", req.FailureMessage), err)
	}
	return nil
}

// Navigate loads url in window.
func (e *Engine) Navigate(ctx context.Context, req NavigateRequest) error {
	const op = "navigate"
	if err := req.Validate(op); err != nil {
		return err
	}
	d, err := e.enter(ctx, req.Window)
	if err != nil {
		return err
	}
	if err := d.Navigate(ctx, req.URL); err != nil {
		hint := req.FailureMessage
		if hint == "" {
			hint = "Try restarting driver?"
		}
		return e.report(ctx, op, fmt.Sprintf("Failed to reach URL:\n%s\n\n%s", req.URL, hint), err)
	}
	e.logger.Debug("Navigated.", zap.String("window", string(req.Window)), zap.String("url", req.URL))
	return nil
}
