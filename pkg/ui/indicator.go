// Package ui renders loader state for humans and machines: a live pterm
// spinner on terminals, plain lines for pipes, or JSON events.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/busy/pkg/logging"
	"github.com/arthur-debert/busy/pkg/wait"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// IndicatorOptions configures an Indicator
type IndicatorOptions struct {
	// Text prefixes the active loader names
	Text string
	// Refresh is the minimum interval between two text updates while busy.
	// Flips of the aggregate flag are never delayed.
	Refresh time.Duration
}

// Indicator presents a registry's state on a writer
type Indicator struct {
	reg    *wait.Registry
	out    io.Writer
	format Format
	text   string
	logger zerolog.Logger

	mu      sync.Mutex
	limiter *rate.Limiter
	spinner *pterm.SpinnerPrinter
	since   time.Time
	cancel  func()
	// trailing is the pending refresh for an update the limiter rejected
	trailing *time.Timer
}

// jsonEvent is the FormatJSON wire shape
type jsonEvent struct {
	Time       time.Time `json:"time"`
	Loader     string    `json:"loader"`
	Delta      int       `json:"delta"`
	Count      int       `json:"count"`
	AnyLoading bool      `json:"any_loading"`
}

// NewIndicator creates an indicator for reg. FormatAuto is resolved against
// out. Call Attach to start listening.
func NewIndicator(reg *wait.Registry, out io.Writer, format Format, opts IndicatorOptions) *Indicator {
	if opts.Text == "" {
		opts.Text = "Working"
	}
	limit := rate.Inf
	if opts.Refresh > 0 {
		limit = rate.Every(opts.Refresh)
	}

	return &Indicator{
		reg:     reg,
		out:     out,
		format:  Resolve(format, out),
		text:    opts.Text,
		logger:  logging.GetLogger("ui.Indicator"),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Format returns the resolved output format
func (i *Indicator) Format() Format {
	return i.format
}

// Attach subscribes the indicator to its registry. Calling it twice is a no-op.
func (i *Indicator) Attach() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cancel != nil {
		return
	}
	i.cancel = i.reg.Subscribe(i.handle)
	i.logger.Debug().Str("format", i.format.String()).Msg("Indicator attached")
}

// Close unsubscribes and stops a running spinner
func (i *Indicator) Close() {
	i.mu.Lock()
	cancel := i.cancel
	i.cancel = nil
	i.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopTrailing()
	if i.spinner != nil {
		_ = i.spinner.Stop()
		i.spinner = nil
	}
}

func (i *Indicator) handle(e wait.Event) {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch i.format {
	case FormatJSON:
		i.writeJSON(e)
	case FormatTerminal:
		i.updateSpinner(e)
	default:
		i.writeText(e)
	}
}

func (i *Indicator) writeJSON(e wait.Event) {
	data, err := json.Marshal(jsonEvent{
		Time:       time.Now().UTC(),
		Loader:     e.Name,
		Delta:      e.Delta,
		Count:      e.Count,
		AnyLoading: e.AnyLoading,
	})
	if err != nil {
		i.logger.Error().Err(err).Msg("Failed to encode event")
		return
	}
	fmt.Fprintln(i.out, string(data))
}

func (i *Indicator) writeText(e wait.Event) {
	if e.AnyChanged && e.AnyLoading {
		i.since = time.Now()
		fmt.Fprintf(i.out, "%s...\n", i.text)
	}

	switch {
	case e.Delta > 0 && e.Count == 1:
		fmt.Fprintf(i.out, "  started  %s\n", e.Name)
	case e.Delta < 0 && e.Count == 0:
		fmt.Fprintf(i.out, "  finished %s\n", e.Name)
	}

	if e.AnyChanged && !e.AnyLoading {
		fmt.Fprintf(i.out, "Done in %s\n", time.Since(i.since).Round(time.Millisecond))
	}
}

func (i *Indicator) updateSpinner(e wait.Event) {
	if e.AnyChanged && !e.AnyLoading {
		i.stopTrailing()
		if i.spinner != nil {
			i.spinner.Success(fmt.Sprintf("Done in %s", time.Since(i.since).Round(time.Millisecond)))
			i.spinner = nil
		}
		return
	}

	text := i.spinnerText()

	if e.AnyChanged {
		i.since = time.Now()
		spinner, err := pterm.DefaultSpinner.
			WithWriter(i.out).
			WithRemoveWhenDone(false).
			Start(text)
		if err != nil {
			i.logger.Warn().Err(err).Msg("Failed to start spinner")
			return
		}
		i.spinner = spinner
		return
	}

	if i.spinner == nil {
		return
	}
	if i.limiter.Allow() {
		i.spinner.UpdateText(text)
		return
	}
	// the last update of a burst must still land; one timer covers the burst
	if i.trailing == nil {
		i.trailing = time.AfterFunc(i.limiter.Reserve().Delay(), i.refresh)
	}
}

// refresh applies the text for the current active set
func (i *Indicator) refresh() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.trailing = nil
	if i.spinner == nil {
		return
	}
	i.spinner.UpdateText(i.spinnerText())
}

// stopTrailing must be called with i.mu held
func (i *Indicator) stopTrailing() {
	if i.trailing != nil {
		i.trailing.Stop()
		i.trailing = nil
	}
}

// spinnerText renders "Working: a, b ×2"
func (i *Indicator) spinnerText() string {
	snap := i.reg.Snapshot()
	keys := make([]string, 0, len(snap))
	for name := range snap {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	names := make([]string, 0, len(keys))
	for _, name := range keys {
		if count := snap[name]; count > 1 {
			names = append(names, fmt.Sprintf("%s ×%d", name, count))
		} else {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return i.text
	}
	return i.text + ": " + strings.Join(names, ", ")
}
