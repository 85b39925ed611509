package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/arthur-debert/busy/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rows = []ui.SummaryRow{
	{Name: "build", Command: "make", Duration: 1500 * time.Millisecond},
	{Name: "test", Command: "go test", Duration: 20 * time.Millisecond, Error: "exit status 1"},
}

func TestRenderSummary_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ui.RenderSummary(&buf, rows, ui.FormatText))

	assert.Equal(t, "build\t1.5s\tok\ntest\t20ms\tFAIL exit status 1\n", buf.String())
}

func TestRenderSummary_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ui.RenderSummary(&buf, rows, ui.FormatJSON))

	var got []ui.SummaryRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, rows, got)
}

func TestRenderSummary_Terminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ui.RenderSummary(&buf, rows, ui.FormatTerminal))

	out := buf.String()
	assert.Contains(t, out, "build")
	assert.Contains(t, out, "exit status 1")
}
