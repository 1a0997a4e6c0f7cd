// pkg/ledger/reporter.go
package ledger

import (
	"context"

	"go.uber.org/zap"
)

// Reporter writes failures to the ledger and, for user-facing ones, pauses on
// the prompter so the human sees them before the workflow moves on.
type Reporter struct {
	ledger   *Ledger
	prompter Prompter
	logger   *zap.Logger
}

// NewReporter wires a reporter. A nil prompter means NopPrompter.
func NewReporter(l *Ledger, p Prompter, logger *zap.Logger) *Reporter {
	if p == nil {
		p = NopPrompter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{ledger: l, prompter: p, logger: logger.Named("reporter")}
}

// Ledger returns the underlying ledger.
func (r *Reporter) Ledger() *Ledger { return r.ledger }

// ReportWithPrompt records err and blocks until the message is acknowledged.
func (r *Reporter) ReportWithPrompt(ctx context.Context, err error, message string) {
	entry := r.ledger.Append(err)
	r.logger.Warn("Failure reported.",
		zap.String("entry_id", entry.ID),
		zap.String("op", entry.Op),
		zap.String("message", message),
		zap.Error(err),
	)
	if perr := r.prompter.Acknowledge(ctx, message); perr != nil {
		r.logger.Debug("Acknowledgement prompt failed.", zap.Error(perr))
	}
}

// ReportSilently records err with no prompt. Use it for failures the human
// cannot act on, such as shutdown errors.
func (r *Reporter) ReportSilently(err error) {
	entry := r.ledger.Append(err)
	r.logger.Debug("Failure recorded.", zap.String("entry_id", entry.ID), zap.Error(err))
}

// NoteSilently records a free-text failure with no prompt.
func (r *Reporter) NoteSilently(text string) {
	entry := r.ledger.AppendText(text)
	r.logger.Debug("Failure noted.", zap.String("entry_id", entry.ID), zap.String("text", text))
}
