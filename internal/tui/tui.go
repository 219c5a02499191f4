// Package tui is an interactive browser over an archive's day files.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/msga/internal/scan"
)

const debounceDelay = 150 * time.Millisecond

// message types

type debounceTickMsg struct {
	query string
}

// model

type model struct {
	files       []scan.DayFile
	visible     []scan.DayFile
	query       string
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewPath string // path currently shown, to avoid duplicate loads
	width       int
	height      int
	ready       bool
	quitting    bool
	selected    *scan.DayFile
}

func initialModel(files []scan.DayFile) model {
	ti := textinput.New()
	ti.Placeholder = "Filter by chat or day..."
	ti.Focus()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return model{
		files:       files,
		visible:     files,
		filterInput: ti,
		preview:     viewport.New(0, 0),
	}
}

// Run starts the browser and blocks until it exits. When the user picks a
// day file its path is copied to the clipboard and reported on out.
func Run(files []scan.DayFile, out io.Writer) error {
	m := initialModel(files)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.selected != nil {
		copyPath(out, fm.selected.Path)
	}
	return nil
}

// copyPath puts path on the clipboard, or just prints it when there is no
// clipboard (headless sessions, missing xclip).
func copyPath(out io.Writer, path string) {
	if err := clipboard.WriteAll(path); err != nil {
		fmt.Fprintln(out, path)
		return
	}
	fmt.Fprintf(out, "Copied to clipboard: %s\n", path)
}

// Init loads the preview of the first file.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCurrentPreview())
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// the new viewport is empty, so reload the current file into it
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewPath = ""
		cmds = append(cmds, m.loadCurrentPreview())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Copy):
			if f, ok := m.current(); ok {
				m.selected = &f
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.First):
			if m.cursor != 0 && len(m.visible) > 0 {
				m.cursor = 0
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Last):
			if last := len(m.visible) - 1; last >= 0 && m.cursor != last {
				m.cursor = last
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		// Pass remaining keys to text input
		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		if q := m.filterInput.Value(); q != m.query {
			m.query = q
			cmds = append(cmds, scheduleDebouncedFilter(q))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if !m.ready || len(m.visible) == 0 {
			return m, nil
		}

		region, itemIdx := m.hitTest(msg.X, msg.Y)

		switch {
		case region == regionList && msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonWheelDown:
			visibleItems := m.panelHeight() / linesPerItem
			maxOffset := len(m.visible) - visibleItems
			if maxOffset < 0 {
				maxOffset = 0
			}
			if m.listOffset < maxOffset {
				m.listOffset++
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if itemIdx >= 0 && itemIdx < len(m.visible) && m.cursor != itemIdx {
				m.cursor = itemIdx
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var vpCmd tea.Cmd
			m.preview, vpCmd = m.preview.Update(msg)
			if vpCmd != nil {
				cmds = append(cmds, vpCmd)
			}
			return m, tea.Batch(cmds...)
		}

		return m, nil

	case debounceTickMsg:
		// Only filter if the query hasn't changed since the tick was scheduled
		if msg.query != m.query {
			return m, nil
		}
		m.visible = filterFiles(m.files, msg.query)
		m.cursor = 0
		m.listOffset = 0
		if len(m.visible) == 0 {
			m.preview.SetContent("")
			m.previewPath = ""
			return m, nil
		}
		return m, m.loadCurrentPreview()

	case previewLoadedMsg:
		if msg.path == m.previewPath {
			return m, nil
		}
		// stale: the cursor moved on while the file was read
		if f, ok := m.current(); !ok || f.Path != msg.path {
			return m, nil
		}
		if msg.err != nil {
			m.preview.SetContent("Preview error: " + msg.err.Error())
		} else {
			m.preview.SetContent(msg.content)
			m.preview.GotoTop()
		}
		m.previewPath = msg.path
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := m.filterInput.View()

	listContent := m.renderList(listW, panelH)
	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(listContent)

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

// helper methods

func (m model) current() (scan.DayFile, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return scan.DayFile{}, false
	}
	return m.visible[m.cursor], true
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	// 40% for list, minus border padding
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	// 60% for preview, minus border padding
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	pH := m.panelHeight()
	contentYStart := 2 // input row (1) + top border (1)
	contentYEnd := contentYStart + pH - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		itemIndex := m.listOffset + (relY / linesPerItem)
		return regionList, itemIndex
	}

	if x > listBoxRight+1 {
		return regionPreview, -1
	}

	return regionNone, -1
}

func (m model) statusBar() string {
	parts := []string{fmt.Sprintf("%d/%d days", len(m.visible), len(m.files))}
	for _, b := range keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func scheduleDebouncedFilter(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	f, ok := m.current()
	if !ok || f.Path == m.previewPath {
		return nil
	}
	return loadPreviewCmd(f.Path)
}
