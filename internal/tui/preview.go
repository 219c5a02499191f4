package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// previewLoadedMsg is sent when a day file has been read for the preview.
type previewLoadedMsg struct {
	path    string
	content string
	err     error
}

// loadPreviewCmd returns a tea.Cmd that reads the day file async.
func loadPreviewCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return previewLoadedMsg{path: path, content: string(data), err: err}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
