package ui

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/arthur-debert/busy/pkg/testutil"
	"github.com/arthur-debert/busy/pkg/wait"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *wait.Registry {
	return wait.New(wait.WithLogger(zerolog.Nop()))
}

func TestIndicator_Text(t *testing.T) {
	reg := newRegistry()
	var buf bytes.Buffer

	ind := NewIndicator(reg, &buf, FormatAuto, IndicatorOptions{Text: "Building"})
	require.Equal(t, FormatText, ind.Format())
	ind.Attach()
	defer ind.Close()

	a := reg.Start("compile")
	b := reg.Start("compile")
	reg.Start("lint").Release()
	a.Release()
	b.Release()

	out := buf.String()
	assert.Contains(t, out, "Building...\n")
	assert.Contains(t, out, "  started  compile\n")
	assert.Contains(t, out, "  started  lint\n")
	assert.Contains(t, out, "  finished lint\n")
	assert.Contains(t, out, "  finished compile\n")
	assert.Contains(t, out, "Done in ")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("started  compile")), "overlapping starts print once")
}

func TestIndicator_JSON(t *testing.T) {
	reg := newRegistry()
	var buf bytes.Buffer

	ind := NewIndicator(reg, &buf, FormatJSON, IndicatorOptions{})
	ind.Attach()
	ind.Attach()
	defer ind.Close()

	reg.Start("fetch").Release()

	var events []jsonEvent
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var e jsonEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		events = append(events, e)
	}

	require.Len(t, events, 2, "double Attach must not duplicate events")
	assert.Equal(t, "fetch", events[0].Loader)
	assert.Equal(t, 1, events[0].Delta)
	assert.True(t, events[0].AnyLoading)
	assert.Equal(t, -1, events[1].Delta)
	assert.Equal(t, 0, events[1].Count)
	assert.False(t, events[1].AnyLoading)
}

func TestIndicator_CloseUnsubscribes(t *testing.T) {
	reg := newRegistry()
	var buf bytes.Buffer

	ind := NewIndicator(reg, &buf, FormatText, IndicatorOptions{})
	ind.Attach()
	ind.Close()
	ind.Close()

	reg.Start("late")
	assert.Empty(t, buf.String())
}

func TestIndicator_Terminal(t *testing.T) {
	rawSpinner(t)

	reg := newRegistry()
	var buf bytes.Buffer

	ind := NewIndicator(reg, &buf, FormatTerminal, IndicatorOptions{Text: "Syncing"})
	ind.Attach()
	defer ind.Close()

	h := reg.Start("a")
	ind.mu.Lock()
	assert.NotNil(t, ind.spinner, "spinner starts when busy")
	ind.mu.Unlock()

	reg.Start("b").Release()
	h.Release()

	ind.mu.Lock()
	assert.Nil(t, ind.spinner, "spinner stops when idle")
	ind.mu.Unlock()
}

// rawSpinner keeps pterm from animating into test buffers
func rawSpinner(t *testing.T) {
	t.Helper()
	raw := pterm.RawOutput
	pterm.RawOutput = true
	t.Cleanup(func() { pterm.RawOutput = raw })
}

func (i *Indicator) shownText() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.spinner == nil {
		return ""
	}
	return i.spinner.Text
}

func TestIndicator_ThrottledTextSettles(t *testing.T) {
	rawSpinner(t)

	reg := newRegistry()
	ind := NewIndicator(reg, &testutil.SyncBuffer{}, FormatTerminal, IndicatorOptions{
		Text:    "W",
		Refresh: 50 * time.Millisecond,
	})
	ind.Attach()
	defer ind.Close()

	a := reg.Start("a")
	defer a.Release()
	b := reg.Start("b")
	assert.Equal(t, "W: a, b", ind.shownText())

	// rejected by the limiter, applied by the trailing refresh
	b.Release()
	assert.Eventually(t, func() bool { return ind.shownText() == "W: a" },
		2*time.Second, 5*time.Millisecond, "text stuck at %q", ind.shownText())
}

func TestIndicator_TrailingRefreshStopsWhenIdle(t *testing.T) {
	rawSpinner(t)

	reg := newRegistry()
	ind := NewIndicator(reg, &testutil.SyncBuffer{}, FormatTerminal, IndicatorOptions{
		Text:    "W",
		Refresh: time.Hour,
	})
	ind.Attach()
	defer ind.Close()

	a := reg.Start("a")
	reg.Start("b").Release()
	reg.Start("c").Release()

	ind.mu.Lock()
	assert.NotNil(t, ind.trailing, "a rejected update schedules one refresh")
	ind.mu.Unlock()

	a.Release()
	ind.mu.Lock()
	assert.Nil(t, ind.trailing, "going idle cancels the pending refresh")
	assert.Nil(t, ind.spinner)
	ind.mu.Unlock()
}

func TestIndicator_RefreshAfterCloseIsNoop(t *testing.T) {
	rawSpinner(t)

	reg := newRegistry()
	ind := NewIndicator(reg, &testutil.SyncBuffer{}, FormatTerminal, IndicatorOptions{})
	ind.Attach()
	reg.Start("a")
	ind.Close()

	assert.NotPanics(t, ind.refresh)
	assert.Empty(t, ind.shownText())
}

func TestSpinnerText(t *testing.T) {
	reg := newRegistry()
	ind := NewIndicator(reg, &bytes.Buffer{}, FormatText, IndicatorOptions{Text: "Working"})

	assert.Equal(t, "Working", ind.spinnerText())

	reg.Start("b")
	reg.Start("a")
	reg.Start("a")
	assert.Equal(t, "Working: a ×2, b", ind.spinnerText())
}
