package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/busy/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatus(t *testing.T) {
	assert.Equal(t, ui.Status{AnyLoading: false, Loaders: map[string]int{}}, ui.NewStatus(nil))
	assert.True(t, ui.NewStatus(map[string]int{"a": 1}).AnyLoading)
}

func TestRenderStatus_Text(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, ui.RenderStatus(&buf, ui.NewStatus(nil), ui.FormatText))
	assert.Equal(t, "idle\n", buf.String())

	buf.Reset()
	require.NoError(t, ui.RenderStatus(&buf, ui.NewStatus(map[string]int{"sync": 1, "build": 2}), ui.FormatAuto))
	assert.Equal(t, "build\t2\nsync\t1\n", buf.String())
}

func TestRenderStatus_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ui.RenderStatus(&buf, ui.NewStatus(map[string]int{"sync": 3}), ui.FormatJSON))

	var got ui.Status
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.True(t, got.AnyLoading)
	assert.Equal(t, map[string]int{"sync": 3}, got.Loaders)
}

func TestRenderStatus_Terminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ui.RenderStatus(&buf, ui.NewStatus(map[string]int{"sync": 3}), ui.FormatTerminal))

	out := buf.String()
	assert.Contains(t, out, "busy")
	assert.Contains(t, out, "LOADER")
	assert.Contains(t, out, "sync")
	assert.Contains(t, out, "3")
}

func TestRenderStatus_UnknownFormat(t *testing.T) {
	assert.Error(t, ui.RenderStatus(&bytes.Buffer{}, ui.NewStatus(nil), ui.Format(42)))
}
