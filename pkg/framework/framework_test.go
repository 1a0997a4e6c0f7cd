// pkg/framework/framework_test.go
package framework

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/browser/browsertest"
	"github.com/xkilldash9x/tabwarden/pkg/browser/cdp"
	"github.com/xkilldash9x/tabwarden/pkg/browser/pw"
	"github.com/xkilldash9x/tabwarden/pkg/config"
	"github.com/xkilldash9x/tabwarden/pkg/fault"
	"github.com/xkilldash9x/tabwarden/pkg/interact"
	"github.com/xkilldash9x/tabwarden/pkg/ledger"
	"github.com/xkilldash9x/tabwarden/pkg/validate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memorySink struct {
	flushes [][]ledger.Entry
	err     error
}

func (s *memorySink) Flush(entries []ledger.Entry) error {
	s.flushes = append(s.flushes, entries)
	return s.err
}

type harness struct {
	F        *Framework
	Driver   *browsertest.Driver
	Launcher *browsertest.Launcher
	Prompts  *ledger.RecordingPrompter
	Sink     *memorySink
	Exits    []int
}

func newHarness(t *testing.T, extra ...Option) *harness {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.InteractionCfg.DefaultTimeout = 30 * time.Millisecond
	cfg.InteractionCfg.PollInterval = 5 * time.Millisecond

	h := &harness{
		Driver:  browsertest.NewDriver("main"),
		Prompts: &ledger.RecordingPrompter{},
		Sink:    &memorySink{},
	}
	h.Launcher = browsertest.NewLauncher(h.Driver)
	opts := append([]Option{
		WithLauncher(h.Launcher),
		WithPrompter(h.Prompts),
		WithLogger(zaptest.NewLogger(t)),
		WithSink(h.Sink),
		WithExitFunc(func(code int) { h.Exits = append(h.Exits, code) }),
		WithHints(&bytes.Buffer{}),
	}, extra...)

	f, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	h.F = f
	return h
}

func TestNew_StartsSession(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.F.Started())
	assert.Equal(t, browser.WindowHandle("main"), h.F.HomeWindow())
	assert.Equal(t, 800, h.Driver.Width)
	assert.Equal(t, 600, h.Driver.Height)
	require.Len(t, h.Launcher.Launched, 1)
	assert.Equal(t, 30*time.Second, h.Launcher.Launched[0].Timeout)
	assert.Empty(t, h.F.Errors())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.BrowserCfg.WindowWidth = -5

	f, err := New(context.Background(), cfg, WithLauncher(browsertest.NewLauncher()))
	assert.Nil(t, f)
	assert.True(t, fault.IsConfiguration(err))
}

func TestNew_LaunchFailureLeavesUsableFramework(t *testing.T) {
	l := browsertest.NewLauncher()
	l.Fail = errors.New("chrome not found")
	prompts := &ledger.RecordingPrompter{}

	f, err := New(context.Background(), nil, WithLauncher(l), WithPrompter(prompts))
	require.NoError(t, err)
	assert.False(t, f.Started())
	require.Len(t, f.Errors(), 1)
	assert.Equal(t, ledger.KindEnvironment, f.Errors()[0].Kind)
	assert.Len(t, prompts.Messages(), 1)

	l.Fail = nil
	require.NoError(t, f.Restart(context.Background()))
	assert.True(t, f.Started())
	require.NoError(t, f.Close(context.Background()))
}

func TestNew_UsesClock(t *testing.T) {
	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	h := newHarness(t, WithClock(func() time.Time { return fixed }))

	h.F.ReportSilently(errors.New("boom"))
	require.Len(t, h.F.Errors(), 1)
	assert.True(t, fixed.Equal(h.F.Errors()[0].Time))

	got := h.F.ValidateDate("4/2")
	require.True(t, got.OK())
	assert.Equal(t, 2026, got.Date.Year())
}

func TestLauncherFor(t *testing.T) {
	l, err := LauncherFor(config.BrowserConfig{Backend: config.BackendCDP}, nil)
	require.NoError(t, err)
	assert.IsType(t, &cdp.Launcher{}, l)

	l, err = LauncherFor(config.BrowserConfig{Backend: config.BackendPlaywright}, nil)
	require.NoError(t, err)
	assert.IsType(t, &pw.Launcher{}, l)

	_, err = LauncherFor(config.BrowserConfig{Backend: "selenium"}, nil)
	assert.True(t, fault.IsConfiguration(err))
}

func TestFramework_Workflow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	search := browser.Locator{Strategy: browser.ByCSSSelector, Value: "input[name=q]"}
	h.Driver.AddElement("main", search, 1)

	require.NoError(t, h.F.Navigate(ctx, interact.NavigateRequest{Window: h.F.HomeWindow(), URL: "https://example.com"}))
	require.NoError(t, h.F.FindAndEnterTextThenPressEnter(ctx, interact.FindRequest{
		Window:         h.F.HomeWindow(),
		Locator:        search,
		FailureMessage: "the search box",
	}, "tabwarden"))

	assert.Equal(t, []string{"https://example.com"}, h.Driver.URLs)
	assert.Equal(t, []string{"tabwarden"}, h.Driver.Typed)
	assert.Equal(t, []browser.Key{browser.KeyEnter}, h.Driver.Pressed)
	assert.Empty(t, h.F.Errors())
}

func TestFramework_FailuresReachTheLedger(t *testing.T) {
	h := newHarness(t)
	err := h.F.FindAndClick(context.Background(), interact.FindRequest{
		Window:         h.F.HomeWindow(),
		Locator:        browser.Locator{Strategy: browser.ByID, Value: "missing"},
		FailureMessage: "the missing button",
	})
	stage, ok := interact.StoppedAt(err)
	require.True(t, ok)
	assert.Equal(t, interact.StageFind, stage)
	assert.Len(t, h.F.Errors(), 1)
	assert.Equal(t, []string{"Failed to find the missing button"}, h.Prompts.Messages())
	assert.Zero(t, h.Driver.Snapshot().Click)
}

func TestClose(t *testing.T) {
	h := newHarness(t)
	h.F.ReportSilently(errors.New("first"))
	h.F.ReportSilently(errors.New("second"))

	require.NoError(t, h.F.Close(context.Background()))
	require.NoError(t, h.F.Close(context.Background()))

	require.Len(t, h.Sink.flushes, 1)
	assert.Len(t, h.Sink.flushes[0], 2)
	assert.Equal(t, 1, h.Driver.Snapshot().Quit)
	assert.False(t, h.F.Started())
}

func TestClose_RefusesNewSessions(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.F.Close(context.Background()))

	assert.True(t, fault.IsConfiguration(h.F.Restart(context.Background())))
	assert.True(t, fault.IsConfiguration(h.F.Start(context.Background())))
	assert.Equal(t, 1, h.Launcher.Count(), "no browser is launched after Close")
	assert.False(t, h.F.Started())
	assert.Zero(t, h.F.Ledger().Len(), "caller bugs stay out of the ledger")
}

func TestClose_ReportsSinkAndQuitFailures(t *testing.T) {
	h := newHarness(t)
	h.Sink.err = errors.New("disk full")
	h.Driver.FailQuit = errors.New("already gone")

	err := h.F.Close(context.Background())
	assert.ErrorIs(t, err, h.Sink.err)
	assert.ErrorIs(t, err, h.Driver.FailQuit)
}

func TestClose_WritesExportFile(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.LedgerCfg.ExportPath = filepath.Join(t.TempDir(), "errors.jsonl")
	f, err := New(context.Background(), cfg,
		WithLauncher(browsertest.NewLauncher()),
		WithPrompter(ledger.NopPrompter{}),
	)
	require.NoError(t, err)

	f.ReportSilently(errors.New("boom"))
	require.NoError(t, f.Close(context.Background()))
	assert.FileExists(t, cfg.LedgerCfg.ExportPath)
}

func TestExitSentinel_ClosesThenExits(t *testing.T) {
	h := newHarness(t)
	h.F.ReportSilently(errors.New("pending"))

	got := h.F.ValidatePositiveInteger("Exit")
	assert.Equal(t, validate.ExitRequested, got.Kind)
	assert.Equal(t, []int{0}, h.Exits)
	assert.Equal(t, 1, h.Driver.Snapshot().Quit)
	require.Len(t, h.Sink.flushes, 1)
	assert.Len(t, h.Sink.flushes[0], 1)
}

func TestValidationDelegates(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, validate.Back, h.F.ValidateEnumerated("BACK", []string{"yes"}, "yes").Kind)
	assert.True(t, h.F.ValidateEnumerated("Yes", []string{"yes"}, "yes").OK())
	assert.True(t, h.F.ValidateNumeric("-1.5", validate.NumericOptions{AllowFloat: true, AllowNegative: true}).OK())
	assert.Equal(t, validate.Rejected, h.F.ValidatePositiveInteger("0").Kind)
}
