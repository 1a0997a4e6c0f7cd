// pkg/framework/framework.go
package framework

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/browser/cdp"
	"github.com/xkilldash9x/tabwarden/pkg/browser/pw"
	"github.com/xkilldash9x/tabwarden/pkg/config"
	"github.com/xkilldash9x/tabwarden/pkg/fault"
	"github.com/xkilldash9x/tabwarden/pkg/interact"
	"github.com/xkilldash9x/tabwarden/pkg/ledger"
	"github.com/xkilldash9x/tabwarden/pkg/session"
	"github.com/xkilldash9x/tabwarden/pkg/validate"
)

// Framework is the single entry point a workflow script uses: one browser
// session, its interaction engine, the input validators and the shared error
// ledger.
type Framework struct {
	cfg       *config.Config
	logger    *zap.Logger
	ledger    *ledger.Ledger
	reporter  *ledger.Reporter
	manager   *session.Manager
	engine    *interact.Engine
	validator *validate.Validator
	sink      ledger.Sink
	exit      func(code int)
	closed    bool
}

// LauncherFor returns the launcher for the configured backend.
func LauncherFor(cfg config.BrowserConfig, logger *zap.Logger) (browser.Launcher, error) {
	switch cfg.Backend {
	case config.BackendCDP, "":
		return cdp.NewLauncher(logger), nil
	case config.BackendPlaywright:
		return pw.NewLauncher(logger), nil
	default:
		return nil, fault.Configuration("new_framework", "browser.backend",
			fmt.Sprintf("unsupported backend %q", cfg.Backend))
	}
}

// New wires every component and starts the browser session. A nil cfg means
// defaults. Only caller bugs are returned as errors: when the browser fails to
// start the failure is in the ledger and the Framework is returned with
// Started() false so the caller can Restart.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Framework, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.exit == nil {
		o.exit = os.Exit
	}
	if o.hints == nil {
		o.hints = os.Stdout
	}
	if o.launcher == nil {
		l, err := LauncherFor(cfg.Browser(), o.logger)
		if err != nil {
			return nil, err
		}
		o.launcher = l
	}
	if o.prompter == nil {
		if cfg.Prompt().Enabled {
			o.prompter = ledger.NewConsolePrompter(os.Stdin, os.Stdout)
		} else {
			o.prompter = ledger.NopPrompter{}
		}
	}
	if o.sink == nil && cfg.Ledger().ExportPath != "" {
		s, err := ledger.NewFileSink(cfg.Ledger().ExportPath)
		if err != nil {
			return nil, fault.Configuration("new_framework", "ledger.export_path", err.Error())
		}
		o.sink = s
	}

	f := &Framework{
		cfg:    cfg,
		logger: o.logger.Named("framework"),
		sink:   o.sink,
		exit:   o.exit,
	}
	if o.clock != nil {
		f.ledger = ledger.NewWithClock(o.clock)
	} else {
		f.ledger = ledger.New()
	}
	f.reporter = ledger.NewReporter(f.ledger, o.prompter, o.logger)

	b := cfg.Browser()
	manager, err := session.NewManager(session.Options{
		Size: session.WindowSize{Width: b.WindowWidth, Height: b.WindowHeight},
		Launch: browser.LaunchOptions{
			Headless:  b.Headless,
			Args:      b.Args,
			ExecPath:  b.ExecPath,
			RemoteURL: b.RemoteURL,
			Timeout:   b.LaunchTimeout,
		},
		Launcher: o.launcher,
		Reporter: f.reporter,
		Logger:   o.logger,
	})
	if err != nil {
		return nil, err
	}
	f.manager = manager
	f.engine = interact.NewEngine(manager, interact.Config{
		DefaultTimeout: cfg.Interaction().DefaultTimeout,
		PollInterval:   cfg.Interaction().PollInterval,
	}, o.logger)
	f.validator = validate.New(validate.Options{
		Hints:  o.hints,
		Exit:   f.exitNow,
		Now:    o.clock,
		Logger: o.logger,
	})

	if err := manager.Start(ctx); err != nil {
		if fault.IsConfiguration(err) {
			return nil, err
		}
		f.logger.Warn("Browser session did not start; Restart to retry.", zap.Error(err))
	}
	return f, nil
}

// Config returns the configuration the framework was built with.
func (f *Framework) Config() *config.Config { return f.cfg }

// Session exposes the window manager.
func (f *Framework) Session() *session.Manager { return f.manager }

// Engine exposes the interaction engine.
func (f *Framework) Engine() *interact.Engine { return f.engine }

// Validator exposes the input validators.
func (f *Framework) Validator() *validate.Validator { return f.validator }

// Ledger exposes the error ledger.
func (f *Framework) Ledger() *ledger.Ledger { return f.ledger }

// Errors returns a snapshot of the ledger.
func (f *Framework) Errors() []ledger.Entry { return f.ledger.Entries() }

func (f *Framework) Started() bool                    { return f.manager.Started() }
func (f *Framework) HomeWindow() browser.WindowHandle { return f.manager.HomeWindow() }

// -- Session --

// Start launches a browser. A closed Framework never launches another one.
func (f *Framework) Start(ctx context.Context) error {
	if f.closed {
		return fault.Configuration("start", "", "framework is closed")
	}
	return f.manager.Start(ctx)
}

func (f *Framework) Stop(ctx context.Context) error { return f.manager.Stop(ctx) }

// Restart replaces the browser. Like Start it refuses after Close.
func (f *Framework) Restart(ctx context.Context) error {
	if f.closed {
		return fault.Configuration("restart", "", "framework is closed")
	}
	return f.manager.Restart(ctx)
}

func (f *Framework) Windows(ctx context.Context) ([]browser.WindowHandle, error) {
	return f.manager.Windows(ctx)
}

func (f *Framework) SwitchTo(ctx context.Context, w browser.WindowHandle) (session.WindowStatus, error) {
	return f.manager.SwitchTo(ctx, w)
}

func (f *Framework) RecoverToAnyWindow(ctx context.Context) (browser.WindowHandle, session.WindowStatus, error) {
	return f.manager.RecoverToAnyWindow(ctx)
}

// -- Elements --

func (f *Framework) Navigate(ctx context.Context, req interact.NavigateRequest) error {
	return f.engine.Navigate(ctx, req)
}

func (f *Framework) FindElement(ctx context.Context, req interact.FindRequest) (browser.Element, error) {
	return f.engine.FindElement(ctx, req)
}

func (f *Framework) FindElements(ctx context.Context, req interact.FindRequest) ([]browser.Element, error) {
	return f.engine.FindElements(ctx, req)
}

func (f *Framework) Click(ctx context.Context, req interact.ActionRequest) error {
	return f.engine.Click(ctx, req)
}

func (f *Framework) EnterText(ctx context.Context, req interact.ActionRequest, text string) error {
	return f.engine.EnterText(ctx, req, text)
}

func (f *Framework) PressEnter(ctx context.Context, req interact.ActionRequest) error {
	return f.engine.PressEnter(ctx, req)
}

func (f *Framework) FindAndClick(ctx context.Context, req interact.FindRequest) error {
	return f.engine.FindAndClick(ctx, req)
}

func (f *Framework) FindAndEnterText(ctx context.Context, req interact.FindRequest, text string) error {
	return f.engine.FindAndEnterText(ctx, req, text)
}

func (f *Framework) FindAndEnterTextThenPressEnter(ctx context.Context, req interact.FindRequest, text string) error {
	return f.engine.FindAndEnterTextThenPressEnter(ctx, req, text)
}

// -- Validation --

func (f *Framework) ValidatePositiveInteger(input string) validate.Outcome {
	return f.validator.PositiveInteger(input)
}

func (f *Framework) ValidateNumeric(input string, opts validate.NumericOptions) validate.Outcome {
	return f.validator.Numeric(input, opts)
}

func (f *Framework) ValidateEnumerated(input string, acceptable []string, description string) validate.Outcome {
	return f.validator.Enumerated(input, acceptable, description)
}

func (f *Framework) ValidateDate(input string) validate.Outcome {
	return f.validator.Date(input)
}

// -- Reporting --

// ReportWithPrompt records err and waits for the user to acknowledge message.
func (f *Framework) ReportWithPrompt(ctx context.Context, err error, message string) {
	f.reporter.ReportWithPrompt(ctx, err, message)
}

// ReportSilently records err without telling the user.
func (f *Framework) ReportSilently(err error) { f.reporter.ReportSilently(err) }

// Close flushes the ledger to the sink, if any, and stops the browser. It is
// safe to call more than once; only the first call does anything.
func (f *Framework) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	f.closed = true

	var errs []error
	if f.sink != nil {
		if err := f.sink.Flush(f.ledger.Entries()); err != nil {
			f.logger.Error("Failed to export error ledger.", zap.Error(err))
			errs = append(errs, fmt.Errorf("exporting ledger: %w", err))
		}
	}
	if err := f.manager.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	f.logger.Info("Framework closed.", zap.Int("ledger_entries", f.ledger.Len()))
	return errors.Join(errs...)
}

// exitNow runs when a validator sees "exit" or "close".
func (f *Framework) exitNow() {
	if err := f.Close(context.Background()); err != nil {
		f.logger.Warn("Close during exit failed.", zap.Error(err))
	}
	f.exit(0)
}
