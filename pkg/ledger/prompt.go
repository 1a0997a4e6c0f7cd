// pkg/ledger/prompt.go
package ledger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter is the notify-and-wait checkpoint used for user-facing failures.
// Acknowledge shows message and returns once the human has seen it.
type Prompter interface {
	Acknowledge(ctx context.Context, message string) error
}

// NopPrompter never blocks. It suits tests and unattended runs.
type NopPrompter struct{}

func (NopPrompter) Acknowledge(context.Context, string) error { return nil }

// ConsolePrompter writes the message and waits for a line on its reader.
type ConsolePrompter struct {
	mu     sync.Mutex
	out    io.Writer
	in     *bufio.Reader
	suffix string
}

// NewConsolePrompter builds a prompter over the given streams.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{
		out:    out,
		in:     bufio.NewReader(in),
		suffix: "Press Enter to continue.",
	}
}

// Acknowledge blocks until a newline (or EOF) is read. There is no timeout;
// the read does not observe ctx once it has started.
func (p *ConsolePrompter) Acknowledge(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := strings.TrimRight(message, "\n")
	if _, err := fmt.Fprintf(p.out, "\n%s\n\n%s\n", msg, p.suffix); err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	if _, err := p.in.ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("failed to read acknowledgement: %w", err)
	}
	return nil
}

// RecordingPrompter captures messages without blocking.
type RecordingPrompter struct {
	mu       sync.Mutex
	messages []string
}

func (r *RecordingPrompter) Acknowledge(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// Messages returns every acknowledged message in order.
func (r *RecordingPrompter) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}
