package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/arthur-debert/busy/pkg/errors"
	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#5FD787"}).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B22222", Dark: "#FF5F5F"}).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// SummaryRow is the outcome of one tracked job
type SummaryRow struct {
	Name     string        `json:"name"`
	Command  string        `json:"command"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// RenderSummary writes one line per row, or a JSON array
func RenderSummary(w io.Writer, rows []SummaryRow, format Format) error {
	switch Resolve(format, w) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatTerminal:
		for _, r := range rows {
			mark := okStyle.Render("✓")
			if r.Error != "" {
				mark = failStyle.Render("✗")
			}
			line := fmt.Sprintf("%s %s %s", mark, r.Name, dimStyle.Render(r.Duration.Round(time.Millisecond).String()))
			if r.Error != "" {
				line += " " + failStyle.Render(r.Error)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	case FormatText:
		for _, r := range rows {
			status := "ok"
			if r.Error != "" {
				status = "FAIL " + r.Error
			}
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Duration.Round(time.Millisecond), status); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Newf(errors.ErrOutputFormat, "unknown format: %v", format)
	}
}
