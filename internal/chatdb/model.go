package chatdb

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

type Participant struct {
	HandleID int64
	Handle   string // phone number or email
}

type Chat struct {
	ID           int64
	Participants []Participant // ordered by handle
}

func (c Chat) String() string {
	return strings.Join(c.handles(), ", ")
}

// DirName is the archive directory for the chat. Handles are NFC-normalised
// so the same participant maps to the same directory on every filesystem.
func (c Chat) DirName() string {
	if len(c.Participants) == 0 {
		return fmt.Sprintf("chat-%d", c.ID)
	}
	return sanitizeName(strings.Join(c.handles(), ","))
}

func (c Chat) handles() []string {
	hs := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		hs[i] = p.Handle
	}
	return hs
}

type Attachment struct {
	ID           int64
	TransferName string
	Filename     string // may start with ~
}

// DstName is the file name the attachment is archived under.
func (a Attachment) DstName() string {
	name := a.TransferName
	if name == "" {
		name = filepath.Base(a.Filename)
	}
	return fmt.Sprintf("%d-%s", a.ID, sanitizeName(name))
}

// SrcPath resolves the attachment's location on disk.
func (a Attachment) SrcPath(home string) string {
	if strings.HasPrefix(a.Filename, "~/") {
		return filepath.Join(home, a.Filename[2:])
	}
	return a.Filename
}

func (a Attachment) String() string {
	return "[" + a.DstName() + "]"
}

type Message struct {
	ID          int64
	Date        time.Time
	ChatID      int64
	Handle      string
	CallerID    string
	IsFromMe    bool
	Text        string
	Attachments []Attachment
}

// Sender is the handle that wrote the message: the local account for
// outgoing messages, the remote handle otherwise.
func (m Message) Sender() string {
	if m.IsFromMe {
		if m.CallerID == "" {
			return "me"
		}
		return m.CallerID
	}
	if m.Handle == "" {
		return "unknown"
	}
	return m.Handle
}

func sanitizeName(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, string(filepath.Separator), "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.TrimLeft(s, ".")
	if s == "" {
		return "_"
	}
	return s
}
