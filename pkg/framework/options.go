// pkg/framework/options.go
package framework

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/ledger"
)

// Option customizes a Framework.
type Option func(*options)

type options struct {
	launcher browser.Launcher
	prompter ledger.Prompter
	logger   *zap.Logger
	sink     ledger.Sink
	exit     func(code int)
	clock    func() time.Time
	hints    io.Writer
}

// WithLauncher overrides the launcher selected by browser.backend.
func WithLauncher(l browser.Launcher) Option {
	return func(o *options) { o.launcher = l }
}

// WithPrompter overrides the console prompter.
func WithPrompter(p ledger.Prompter) Option {
	return func(o *options) { o.prompter = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSink sets where the ledger goes on Close, overriding ledger.export_path.
func WithSink(s ledger.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithExitFunc replaces os.Exit for the exit sentinel.
func WithExitFunc(exit func(code int)) Option {
	return func(o *options) { o.exit = exit }
}

// WithClock fixes the time source for ledger timestamps and date parsing.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithHints redirects validator hints, which go to stdout by default.
func WithHints(w io.Writer) Option {
	return func(o *options) { o.hints = w }
}
