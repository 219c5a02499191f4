package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DayFile is one chat-day transcript found in an archive.
type DayFile struct {
	Path  string
	Chat  string // chat directory name
	Day   string // file name without .txt, in the archive's day format
	Mtime int64
	Size  int64
}

// ScanArchive returns every <chat>/<day>.txt under root, sorted by chat and
// then by day label. A missing root yields no files. Unreadable directories
// are skipped.
func ScanArchive(root string) ([]DayFile, error) {
	var files []DayFile
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".txt" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		chat, name := filepath.Split(rel)
		chat = filepath.Clean(chat)
		// only files exactly one directory deep
		if chat == "." || strings.ContainsRune(chat, filepath.Separator) {
			return nil
		}
		files = append(files, DayFile{
			Path:  path,
			Chat:  chat,
			Day:   strings.TrimSuffix(name, ".txt"),
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Chat != files[j].Chat {
			return files[i].Chat < files[j].Chat
		}
		return files[i].Day < files[j].Day
	})
	return files, nil
}
