// pkg/browser/cdp/launcher.go
package cdp

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
)

// DefaultLaunchTimeout bounds the startup health check when LaunchOptions
// leaves Timeout unset.
const DefaultLaunchTimeout = 30 * time.Second

// Launcher starts Chrome over the DevTools protocol, or attaches to a running
// instance when LaunchOptions.RemoteURL is set.
type Launcher struct {
	logger *zap.Logger
}

var _ browser.Launcher = (*Launcher)(nil)

// NewLauncher returns a chromedp-backed launcher.
func NewLauncher(logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{logger: logger.Named("cdp")}
}

// Launch allocates a browser and waits until its first tab answers. The
// browser outlives ctx; only Quit releases it.
func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Driver, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if opts.RemoteURL != "" {
		l.logger.Info("Attaching to remote browser...", zap.String("url", opts.RemoteURL))
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
	} else {
		l.logger.Info("Initializing browser allocator...", zap.Bool("headless", opts.Headless))
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), AllocatorOptions(opts)...)
	}
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultLaunchTimeout
	}

	// The first Run allocates the browser, so it must not carry a deadline of
	// its own: the browser would die with it.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(browserCtx) }()

	var err error
	select {
	case err = <-started:
	case <-time.After(timeout):
		err = fmt.Errorf("browser did not respond within %s", timeout)
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser failed to start or respond: %w", err)
	}

	first := chromedp.FromContext(browserCtx).Target.TargetID
	d := newDriver(browserCtx, browserCancel, allocCancel, first, l.logger)
	l.logger.Info("Browser launched successfully and is responsive.", zap.String("window", string(first)))
	return d, nil
}

// AllocatorOptions assembles the Chrome flags for opts on top of chromedp's
// defaults. The automation infobar flag is switched off; extra Args of the
// form "--name=value" or "--name" are appended as flags.
func AllocatorOptions(opts browser.LaunchOptions) []chromedp.ExecAllocatorOption {
	out := make([]chromedp.ExecAllocatorOption, 0, len(chromedp.DefaultExecAllocatorOptions)+len(opts.Args)+10)
	out = append(out, chromedp.DefaultExecAllocatorOptions[:]...)
	out = append(out, chromedp.Flag("enable-automation", false))

	out = append(out,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
	)
	if opts.Width > 0 && opts.Height > 0 {
		out = append(out, chromedp.WindowSize(opts.Width, opts.Height))
	}
	if opts.ExecPath != "" {
		out = append(out, chromedp.ExecPath(opts.ExecPath))
	}
	for _, arg := range opts.Args {
		name, value := ParseFlag(arg)
		if name == "" {
			continue
		}
		out = append(out, chromedp.Flag(name, value))
	}

	// Required for running inside containers.
	if runtime.GOOS == "linux" {
		out = append(out,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}
	return out
}

// ParseFlag splits a command-line style argument into a flag name and value.
// A bare flag has the value true.
func ParseFlag(arg string) (string, interface{}) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	name := strings.TrimLeft(parts[0], "-")
	if len(parts) == 2 {
		return name, parts[1]
	}
	return name, true
}
