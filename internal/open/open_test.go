package open

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/msga/internal/scan"
)

func TestCommand(t *testing.T) {
	cases := []struct {
		editor string
		want   []string
	}{
		{"nvim", []string{"nvim", "+12", "/a/b.txt"}},
		{"/usr/bin/vim", []string{"/usr/bin/vim", "+12", "/a/b.txt"}},
		{"code", []string{"code", "--goto", "/a/b.txt:12"}},
		{"less", []string{"less", "+12", "/a/b.txt"}},
		{"nano", []string{"nano", "/a/b.txt"}},
	}
	for _, tc := range cases {
		t.Run(tc.editor, func(t *testing.T) {
			assert.Equal(t, tc.want, Command(tc.editor, "/a/b.txt", 12).Args)
		})
	}

	assert.Equal(t, []string{"less", "+1", "/a/b.txt"}, Command("less", "/a/b.txt", 0).Args)
}

func TestEditorFallback(t *testing.T) {
	t.Setenv("EDITOR", "")
	assert.Equal(t, "less", Editor())
	t.Setenv("EDITOR", "vim")
	assert.Equal(t, "vim", Editor())
}

func TestFind(t *testing.T) {
	files := []scan.DayFile{
		{Chat: "+15550001,bob@example.com", Day: "2024-01-02", Path: "g"},
		{Chat: "bob@example.com", Day: "2024-01-01", Path: "b1"},
		{Chat: "bob@example.com", Day: "2024-01-02", Path: "b2"},
	}

	f, err := Find(files, "2024-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, "b1", f.Path)

	f, err = Find(files, "2024-01-02", "+1555")
	require.NoError(t, err)
	assert.Equal(t, "g", f.Path)

	_, err = Find(files, "2024-01-02", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "narrow with --chat")

	_, err = Find(files, "2024-01-03", "")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestFileMissing(t *testing.T) {
	err := File("less", "/nonexistent/2024-01-01.txt", 1)
	assert.Error(t, err)
}
