// pkg/ledger/sink.go
package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
)

// Sink receives the ledger when the session closes.
type Sink interface {
	Flush(entries []Entry) error
}

// FileSink appends entries to a file as JSON lines.
type FileSink struct {
	path string
}

// NewFileSink resolves path (a leading ~ is expanded) and returns a sink for it.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger export path is empty")
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve ledger export path '%s': %w", path, err)
	}
	return &FileSink{path: expanded}, nil
}

// Path returns the resolved file path.
func (s *FileSink) Path() string { return s.path }

// Flush appends one JSON object per entry. An empty ledger writes nothing and
// does not create the file.
func (s *FileSink) Flush(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger file: %w", err)
	}
	enc := json.NewEncoder(f)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode ledger entry %s: %w", e.ID, err)
		}
	}
	return f.Close()
}
