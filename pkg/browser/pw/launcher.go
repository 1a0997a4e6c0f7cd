// pkg/browser/pw/launcher.go
package pw

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
)

// Launcher starts Chromium through playwright, or connects over CDP when
// LaunchOptions.RemoteURL is set. The playwright driver and browsers must
// already be installed.
type Launcher struct {
	logger *zap.Logger
}

var _ browser.Launcher = (*Launcher)(nil)

// NewLauncher returns a playwright-backed launcher.
func NewLauncher(logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{logger: logger.Named("playwright")}
}

func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	b, err := l.browser(pw, opts)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.Width > 0 && opts.Height > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: opts.Width, Height: opts.Height}
	}
	bc, err := b.NewContext(ctxOpts)
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	if _, err := bc.NewPage(); err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("opening first page: %w", err)
	}

	d := &Driver{pw: pw, browser: b, context: bc, pages: newRegistry(), logger: l.logger}
	handles := d.refresh()
	d.active = handles[0]
	l.logger.Info("Browser launched successfully and is responsive.", zap.String("window", string(d.active)))
	return d, nil
}

func (l *Launcher) browser(pw *playwright.Playwright, opts browser.LaunchOptions) (playwright.Browser, error) {
	var timeout *float64
	if opts.Timeout > 0 {
		timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}

	if opts.RemoteURL != "" {
		l.logger.Info("Connecting to remote browser...", zap.String("url", opts.RemoteURL))
		b, err := pw.Chromium.ConnectOverCDP(opts.RemoteURL, playwright.BrowserTypeConnectOverCDPOptions{Timeout: timeout})
		if err != nil {
			return nil, fmt.Errorf("connecting to %s: %w", opts.RemoteURL, err)
		}
		return b, nil
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     append([]string{"--disable-blink-features=AutomationControlled"}, opts.Args...),
		Timeout:  timeout,
	}
	if opts.ExecPath != "" {
		launch.ExecutablePath = playwright.String(opts.ExecPath)
	}
	l.logger.Info("Launching Chromium...", zap.Bool("headless", opts.Headless))
	b, err := pw.Chromium.Launch(launch)
	if err != nil {
		return nil, fmt.Errorf("browser failed to start: %w", err)
	}
	return b, nil
}
