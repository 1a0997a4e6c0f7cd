// cmd/open.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tabwarden/internal/observability"
	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/config"
	"github.com/xkilldash9x/tabwarden/pkg/framework"
	"github.com/xkilldash9x/tabwarden/pkg/interact"
	"github.com/xkilldash9x/tabwarden/pkg/ledger"
)

// errNotStarted is returned when the browser could not be launched at all.
var errNotStarted = errors.New("browser session did not start")

type openOptions struct {
	by      string
	click   string
	text    string
	into    string
	submit  bool
	timeout time.Duration
}

func newOpenCmd() *cobra.Command {
	var o openOptions

	cmd := &cobra.Command{
		Use:   "open [url]",
		Short: "Open a page and optionally click or type into an element.",
		Long: `Open launches a browser session, loads the URL in the home window and
runs the requested steps. Every failure lands in the error ledger, which is
printed before the command exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runOpen(ctx, cmd, cfg, args[0], o)
		},
	}

	cmd.Flags().StringVar(&o.by, "by", "css_selector", "locator strategy for --click and --into")
	cmd.Flags().StringVar(&o.click, "click", "", "element to click after the page loads")
	cmd.Flags().StringVar(&o.text, "type", "", "text to enter into the --into element")
	cmd.Flags().StringVar(&o.into, "into", "", "element that receives --type")
	cmd.Flags().BoolVar(&o.submit, "submit", false, "press Enter after typing")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "how long to wait for each element (default from config)")
	return cmd
}

func runOpen(ctx context.Context, cmd *cobra.Command, cfg *config.Config, url string, o openOptions) error {
	if o.text != "" && o.into == "" {
		return errors.New("--type requires --into")
	}
	strategy, err := browser.ParseStrategy(o.by)
	if err != nil {
		return err
	}
	logger := observability.GetLogger()
	out := cmd.OutOrStdout()

	var prompter ledger.Prompter = ledger.NopPrompter{}
	if cfg.Prompt().Enabled {
		prompter = ledger.NewConsolePrompter(cmd.InOrStdin(), out)
	}

	f, err := newFramework(ctx, cfg,
		framework.WithLogger(logger),
		framework.WithPrompter(prompter),
		framework.WithHints(out),
		framework.WithExitFunc(osExit),
	)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Warn("Failed to close the session cleanly.", zap.Error(cerr))
		}
	}()

	if !f.Started() {
		printLedger(out, f.Errors())
		return errNotStarted
	}

	err = openSteps(ctx, f, url, strategy, o)
	if err == nil {
		fmt.Fprintf(out, "Opened %s in window %s\n", url, f.HomeWindow())
	}
	printLedger(out, f.Errors())
	return err
}

func openSteps(ctx context.Context, f *framework.Framework, url string, strategy browser.Strategy, o openOptions) error {
	home := f.HomeWindow()
	if err := f.Navigate(ctx, interact.NavigateRequest{Window: home, URL: url}); err != nil {
		return err
	}

	if o.click != "" {
		req := interact.FindRequest{
			Window:         home,
			Locator:        browser.Locator{Strategy: strategy, Value: o.click},
			Timeout:        o.timeout,
			FailureMessage: o.click,
		}
		if err := f.FindAndClick(ctx, req); err != nil {
			return err
		}
	}

	if o.text != "" {
		req := interact.FindRequest{
			Window:         home,
			Locator:        browser.Locator{Strategy: strategy, Value: o.into},
			Timeout:        o.timeout,
			FailureMessage: o.into,
		}
		if o.submit {
			return f.FindAndEnterTextThenPressEnter(ctx, req, o.text)
		}
		return f.FindAndEnterText(ctx, req, o.text)
	}
	return nil
}

func printLedger(w io.Writer, entries []ledger.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(w, "Error ledger (%d):\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %s [%s] %s\n", e.Time.Format(time.TimeOnly), e.Kind, e.Text)
	}
}
