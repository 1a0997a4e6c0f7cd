// pkg/ledger/ledger.go
package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

// Entry is one recorded failure. Exactly one of Err or Text carries the payload.
type Entry struct {
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
	// Op names the operation that failed, when the payload carries one.
	Op   string `json:"op,omitempty"`
	Kind string `json:"kind"`
	Text string `json:"text"`
	Err  error  `json:"-"`
}

// Entry kinds.
const (
	KindEnvironment   = "environment"
	KindConfiguration = "configuration"
	KindError         = "error"
	KindText          = "text"
)

// Ledger is an append-only, timestamped record of failures. It is safe for
// concurrent use even though the session layer itself is single threaded.
type Ledger struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// New creates an empty ledger using the wall clock.
func New() *Ledger {
	return &Ledger{now: time.Now}
}

// NewWithClock creates an empty ledger with an injected clock.
func NewWithClock(now func() time.Time) *Ledger {
	return &Ledger{now: now}
}

// Append records an error and returns the stored entry.
func (l *Ledger) Append(err error) Entry {
	e := Entry{Kind: KindError}
	if err != nil {
		e.Text = err.Error()
		e.Err = err
	}
	var ef *fault.EnvironmentFailure
	var ce *fault.ConfigurationError
	switch {
	case errors.As(err, &ef):
		e.Kind = KindEnvironment
		e.Op = ef.Op
	case errors.As(err, &ce):
		e.Kind = KindConfiguration
		e.Op = ce.Op
	}
	return l.add(e)
}

// AppendText records a free-text failure description.
func (l *Ledger) AppendText(text string) Entry {
	return l.add(Entry{Kind: KindText, Text: text})
}

func (l *Ledger) add(e Entry) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.ID = uuid.NewString()
	e.Time = l.now()
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a copy of every entry in insertion order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Last returns the most recent entry, if any.
func (l *Ledger) Last() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}
