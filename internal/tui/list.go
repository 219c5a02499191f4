package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/msga/internal/scan"
)

// linesPerItem is the number of terminal lines each day file occupies.
const linesPerItem = 2

// renderList renders the left panel: the filtered day files with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.visible) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No day files")
		return empty
	}

	var lines []string
	for i, f := range m.visible {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatItem(f, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatItem formats a day file as two lines:
//
//	line 1: [>] day  chat
//	line 2:    size, modified time (dimmed)
func formatItem(f scan.DayFile, width int, selected bool) []string {
	day := f.Day
	chatMax := width - 2 - runewidth.StringWidth(day) - 1
	if chatMax < 0 {
		chatMax = 0
	}
	chat := runewidth.Truncate(f.Chat, chatMax, "…")

	line1 := fmt.Sprintf("%s %s", styleDay.Render(day), styleChat.Render(chat))
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	meta := fmt.Sprintf("%s, written %s", humanize.Bytes(uint64(f.Size)), humanize.Time(time.Unix(f.Mtime, 0)))
	meta = runewidth.Truncate(meta, max(width-4, 0), "")
	line2 := "    " + styleMeta.Render(meta)

	return []string{line1, line2}
}

// filterFiles keeps the files whose chat or day contains every
// whitespace-separated term of query, ignoring case.
func filterFiles(files []scan.DayFile, query string) []scan.DayFile {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return files
	}
	var out []scan.DayFile
	for _, f := range files {
		hay := strings.ToLower(f.Chat + " " + f.Day)
		match := true
		for _, t := range terms {
			if !strings.Contains(hay, t) {
				match = false
				break
			}
		}
		if match {
			out = append(out, f)
		}
	}
	return out
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
