package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/msga/internal/scan"
)

func sampleFiles(t *testing.T) []scan.DayFile {
	t.Helper()
	dir := t.TempDir()
	files := []scan.DayFile{
		{Chat: "+15550001,bob@example.com", Day: "2024-01-02"},
		{Chat: "bob@example.com", Day: "2024-01-01"},
		{Chat: "bob@example.com", Day: "2024-01-02"},
	}
	for i := range files {
		files[i].Path = filepath.Join(dir, files[i].Chat+"-"+files[i].Day+".txt")
		content := files[i].Day + " " + files[i].Chat + "\n"
		require.NoError(t, os.WriteFile(files[i].Path, []byte(content), 0o644))
		files[i].Size = int64(len(content))
	}
	return files
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestFilterFiles(t *testing.T) {
	files := sampleFiles(t)

	assert.Len(t, filterFiles(files, ""), 3)
	assert.Len(t, filterFiles(files, "BOB"), 3)
	assert.Len(t, filterFiles(files, "+1555"), 1)
	assert.Len(t, filterFiles(files, "bob 01-02"), 2)
	assert.Empty(t, filterFiles(files, "alice"))
}

func TestNavigationLoadsPreview(t *testing.T) {
	files := sampleFiles(t)
	m := initialModel(files)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	require.NotNil(t, cmd)

	loaded := loadPreviewCmd(files[1].Path)().(previewLoadedMsg)
	m, _ = update(t, m, loaded)
	assert.Equal(t, files[1].Path, m.previewPath)
	assert.Contains(t, m.preview.View(), "2024-01-01 bob@example.com")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	// cursor at the top stays put
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
}

func TestFirstAndLastKeys(t *testing.T) {
	files := sampleFiles(t)
	m := initialModel(files)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 2, m.cursor)
	require.NotNil(t, cmd)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, m.cursor)

	// already at the top
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyHome})
	assert.Nil(t, cmd)
}

func TestStatusBarListsBindings(t *testing.T) {
	m := initialModel(sampleFiles(t))
	m.visible = m.visible[:1]

	status := m.statusBar()
	assert.Contains(t, status, "1/3 days")
	assert.Contains(t, status, "enter copy path")
	assert.Contains(t, status, "home/end first/last day")
	assert.Contains(t, status, "esc quit")
}

func TestStalePreviewIgnored(t *testing.T) {
	files := sampleFiles(t)
	m := initialModel(files)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = update(t, m, previewLoadedMsg{path: files[2].Path, content: "stale"})
	assert.Empty(t, m.previewPath)
}

func TestFilterAppliesAfterDebounce(t *testing.T) {
	files := sampleFiles(t)
	m := initialModel(files)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m.cursor = 2

	for _, r := range "+1555" {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "+1555", m.query)
	assert.Len(t, m.visible, 3, "filter waits for the debounce tick")

	// an outdated tick does nothing
	m, _ = update(t, m, debounceTickMsg{query: "+15"})
	assert.Len(t, m.visible, 3)

	m, _ = update(t, m, debounceTickMsg{query: "+1555"})
	require.Len(t, m.visible, 1)
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, files[0], m.visible[0])
}

func TestEnterSelectsFile(t *testing.T) {
	files := sampleFiles(t)
	m := initialModel(files)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.NotNil(t, m.selected)
	assert.Equal(t, files[1].Path, m.selected.Path)
	assert.True(t, m.quitting)
}

func TestEnterWithNoFiles(t *testing.T) {
	m := initialModel(nil)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Nil(t, m.selected)
}

func TestHitTest(t *testing.T) {
	m := initialModel(sampleFiles(t))
	m.width, m.height = 100, 30

	region, idx := m.hitTest(5, 2)
	assert.Equal(t, regionList, region)
	assert.Equal(t, 0, idx)

	region, idx = m.hitTest(5, 2+linesPerItem)
	assert.Equal(t, regionList, region)
	assert.Equal(t, 1, idx)

	region, _ = m.hitTest(m.listWidth()+5, 4)
	assert.Equal(t, regionPreview, region)

	region, _ = m.hitTest(5, 0)
	assert.Equal(t, regionNone, region)
}

func TestAdjustListScroll(t *testing.T) {
	m := initialModel(sampleFiles(t))
	m.cursor = 2
	m.adjustListScroll(2 * linesPerItem)
	assert.Equal(t, 1, m.listOffset)

	m.cursor = 0
	m.adjustListScroll(2 * linesPerItem)
	assert.Equal(t, 0, m.listOffset)
}

func TestRenderListEmpty(t *testing.T) {
	m := initialModel(nil)
	assert.Contains(t, m.renderList(30, 4), "No day files")
}

func TestFormatItemTruncatesChat(t *testing.T) {
	f := scan.DayFile{Chat: strings.Repeat("x", 80), Day: "2024-01-01", Size: 2048}
	rows := formatItem(f, 30, false)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "2024-01-01")
	assert.Contains(t, rows[0], "…")
	assert.Contains(t, rows[1], "2.0 kB")
}

func TestCopyPathFallsBackToPrinting(t *testing.T) {
	var out bytes.Buffer
	copyPath(&out, "/archive/bob/2024-01-01.txt")
	assert.Contains(t, out.String(), "/archive/bob/2024-01-01.txt")
}
