package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// LastRunFile holds the ISO date of the next day to export.
const LastRunFile = "lastrun"

// ReadLastRun returns the day recorded in dir, or ok=false when the archive
// has never been written.
func ReadLastRun(dir string) (day Day, ok bool, err error) {
	data, err := os.ReadFile(filepath.Join(dir, LastRunFile))
	if os.IsNotExist(err) {
		return Day{}, false, nil
	}
	if err != nil {
		return Day{}, false, fmt.Errorf("read %s: %w", LastRunFile, err)
	}
	day, err = ParseDay(string(data))
	if err != nil {
		return Day{}, false, err
	}
	return day, true, nil
}

func WriteLastRun(dir string, day Day) error {
	path := filepath.Join(dir, LastRunFile)
	if err := os.WriteFile(path, []byte(day.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", LastRunFile, err)
	}
	return nil
}
