// pkg/ledger/ledger_test.go
package ledger

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestLedger_AppendIsOrderedAndTimestamped(t *testing.T) {
	base := time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)
	l := NewWithClock(fixedClock(base))

	l.Append(fault.Environment("click", "Failed to click submit", errors.New("intercepted")))
	l.AppendText("window vanished")
	l.Append(fault.Configuration("find_element", "strategy", "unknown"))
	l.Append(errors.New("plain"))

	entries := l.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, 4, l.Len())

	assert.Equal(t, KindEnvironment, entries[0].Kind)
	assert.Equal(t, "click", entries[0].Op)
	assert.Equal(t, KindText, entries[1].Kind)
	assert.Equal(t, "window vanished", entries[1].Text)
	assert.Equal(t, KindConfiguration, entries[2].Kind)
	assert.Equal(t, KindError, entries[3].Kind)

	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].Time.After(entries[i-1].Time), "timestamps must increase")
		assert.NotEqual(t, entries[i].ID, entries[i-1].ID)
	}

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "plain", last.Text)
}

func TestLedger_EntriesReturnsCopy(t *testing.T) {
	l := New()
	l.AppendText("one")
	entries := l.Entries()
	entries[0].Text = "mutated"
	assert.Equal(t, "one", l.Entries()[0].Text)

	_, ok := New().Last()
	assert.False(t, ok)
}

func TestReporter(t *testing.T) {
	l := New()
	rec := &RecordingPrompter{}
	r := NewReporter(l, rec, nil)

	r.ReportWithPrompt(context.Background(), errors.New("boom"), "Failed to find the search box")
	r.ReportSilently(errors.New("quit failed"))
	r.NoteSilently("note")

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"Failed to find the search box"}, rec.Messages(), "only prompted reports reach the prompter")
	assert.Same(t, l, r.Ledger())
}

func TestConsolePrompter(t *testing.T) {
	var out strings.Builder
	p := NewConsolePrompter(strings.NewReader("\n"), &out)

	require.NoError(t, p.Acknowledge(context.Background(), "Failed to click submit\n"))
	assert.Equal(t, "\nFailed to click submit\n\nPress Enter to continue.\n", out.String())

	// EOF counts as acknowledgement so a closed stdin never wedges the workflow.
	require.NoError(t, p.Acknowledge(context.Background(), "again"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Acknowledge(ctx, "never shown"), context.Canceled)
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "ledger.jsonl")

	sink, err := NewFileSink(path)
	require.NoError(t, err)
	assert.Equal(t, path, sink.Path())

	require.NoError(t, sink.Flush(nil))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "empty flush must not create the file")

	l := New()
	l.Append(fault.Environment("navigate", "Failed to reach URL", errors.New("net::ERR_NAME_NOT_RESOLVED")))
	l.AppendText("second")
	require.NoError(t, sink.Flush(l.Entries()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var decoded []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		decoded = append(decoded, m)
	}
	require.Len(t, decoded, 2)
	assert.Equal(t, "navigate", decoded[0]["op"])
	assert.Equal(t, KindEnvironment, decoded[0]["kind"])
	assert.Contains(t, decoded[0]["text"], "ERR_NAME_NOT_RESOLVED")
	assert.Equal(t, "second", decoded[1]["text"])
	assert.NotContains(t, decoded[1], "op")
}

func TestNewFileSink_Invalid(t *testing.T) {
	_, err := NewFileSink("")
	assert.Error(t, err)

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	sink, err := NewFileSink("~/tabwarden/ledger.jsonl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "tabwarden", "ledger.jsonl"), sink.Path())
}
