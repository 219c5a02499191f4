package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanArchive(t *testing.T) {
	root := t.TempDir()
	write(t, root, "lastrun", "2024-01-03\n")
	write(t, root, "bob@example.com/2024-01-02.txt", "b2\n")
	write(t, root, "bob@example.com/2024-01-01.txt", "b1\n")
	write(t, root, "bob@example.com/7-photo.jpg", "JPEG")
	write(t, root, "+15550001,bob@example.com/2024-01-02.txt", "group\n")
	write(t, root, ".git/notes.txt", "ignored")
	write(t, root, "stray.txt", "ignored")
	write(t, root, "a/b/deep.txt", "ignored")

	files, err := ScanArchive(root)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "+15550001,bob@example.com", files[0].Chat)
	assert.Equal(t, "2024-01-02", files[0].Day)

	assert.Equal(t, "bob@example.com", files[1].Chat)
	assert.Equal(t, "2024-01-01", files[1].Day)
	assert.Equal(t, filepath.Join(root, "bob@example.com", "2024-01-01.txt"), files[1].Path)
	assert.Equal(t, int64(3), files[1].Size)
	assert.NotZero(t, files[1].Mtime)

	assert.Equal(t, "2024-01-02", files[2].Day)
}

func TestScanArchiveMissingRoot(t *testing.T) {
	files, err := ScanArchive(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}
