package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/arthur-debert/busy/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	busyStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD75F"})
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#5FD787"})
)

// Status is a point-in-time view of a registry
type Status struct {
	AnyLoading bool           `json:"any_loading"`
	Loaders    map[string]int `json:"loaders"`
}

// NewStatus builds a Status from a registry snapshot
func NewStatus(snapshot map[string]int) Status {
	if snapshot == nil {
		snapshot = map[string]int{}
	}
	return Status{AnyLoading: len(snapshot) > 0, Loaders: snapshot}
}

// RenderStatus writes s to w in the given format
func RenderStatus(w io.Writer, s Status, format Format) error {
	switch Resolve(format, w) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatTerminal:
		_, err := fmt.Fprintln(w, renderTable(s))
		return err
	case FormatText:
		return renderText(w, s)
	default:
		return errors.Newf(errors.ErrOutputFormat, "unknown format: %v", format)
	}
}

func sortedNames(loaders map[string]int) []string {
	names := make([]string, 0, len(loaders))
	for name := range loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func renderText(w io.Writer, s Status) error {
	if !s.AnyLoading {
		_, err := fmt.Fprintln(w, "idle")
		return err
	}
	for _, name := range sortedNames(s.Loaders) {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", name, s.Loaders[name]); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(s Status) string {
	if !s.AnyLoading {
		return idleStyle.Render("● idle")
	}

	rows := make([][]string, 0, len(s.Loaders))
	for _, name := range sortedNames(s.Loaders) {
		rows = append(rows, []string{name, strconv.Itoa(s.Loaders[name])})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("LOADER", "ACTIVE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return busyStyle.Render("● busy") + "\n" + t.String()
}
