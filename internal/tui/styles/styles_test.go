package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/assert/v2"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, Truncate("short", 10), "short")
	assert.Equal(t, Truncate("a longer title", 8), "a lon...")
	assert.Equal(t, Truncate("émigré case", 5), "ém...")
	assert.Equal(t, Truncate("abc", 0), "")
	assert.Equal(t, Truncate("abcdef", 2), "ab")
}

func TestRenderListRowFillsWidth(t *testing.T) {
	row := RenderListRow([]RowPart{{Text: "hello"}}, true, 20)
	assert.Equal(t, lipgloss.Width(row), 20)
}
