// Package open shows an archived day file in the user's editor or pager.
package open

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/msga/internal/scan"
)

var ErrNoMatch = errors.New("no archived day file matches")

// Find picks the day file labelled day whose chat contains chat. An empty
// chat matches every chat, so it only succeeds when the day has exactly one.
func Find(files []scan.DayFile, day, chat string) (scan.DayFile, error) {
	var matches []scan.DayFile
	for _, f := range files {
		if f.Day != day {
			continue
		}
		if chat != "" && !strings.Contains(strings.ToLower(f.Chat), strings.ToLower(chat)) {
			continue
		}
		matches = append(matches, f)
	}
	switch len(matches) {
	case 0:
		return scan.DayFile{}, fmt.Errorf("%w: day %s chat %q", ErrNoMatch, day, chat)
	case 1:
		return matches[0], nil
	}
	chats := make([]string, len(matches))
	for i, f := range matches {
		chats[i] = f.Chat
	}
	return scan.DayFile{}, fmt.Errorf("%d chats on %s, narrow with --chat: %s", len(matches), day, strings.Join(chats, "; "))
}

// Editor returns $EDITOR, falling back to less.
func Editor() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "less"
}

// File opens path in editor at lineNum, attached to the terminal.
func File(editor, path string, lineNum int) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	cmd := Command(editor, path, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Command builds the editor invocation, using the jump-to-line syntax of the
// editors that have one.
func Command(editor, path string, lineNum int) *exec.Cmd {
	if lineNum < 1 {
		lineNum = 1
	}
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), path)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", path+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), path)
	default:
		return exec.Command(editor, path)
	}
}
