// Package chatdbtest builds small Messages databases for tests.
package chatdbtest

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// The subset of the Messages schema the archiver reads.
const schema = `
CREATE TABLE handle (
    ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
    id    TEXT NOT NULL
);
CREATE TABLE chat (
    ROWID           INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_identifier TEXT
);
CREATE TABLE chat_handle_join (
    chat_id   INTEGER,
    handle_id INTEGER
);
CREATE TABLE message (
    ROWID                 INTEGER PRIMARY KEY AUTOINCREMENT,
    date                  INTEGER,
    handle_id             INTEGER DEFAULT 0,
    destination_caller_id TEXT,
    is_from_me            INTEGER DEFAULT 0,
    text                  TEXT
);
CREATE TABLE chat_message_join (
    chat_id    INTEGER,
    message_id INTEGER
);
CREATE TABLE attachment (
    ROWID           INTEGER PRIMARY KEY AUTOINCREMENT,
    filename        TEXT,
    transfer_name   TEXT,
    transfer_state  INTEGER DEFAULT 0,
    hide_attachment INTEGER DEFAULT 0
);
CREATE TABLE message_attachment_join (
    message_id    INTEGER,
    attachment_id INTEGER
);
`

var appleEpoch = time.Unix(978307200, 0)

// Fixture is a writable chat.db under a test's temp dir.
type Fixture struct {
	t       testing.TB
	db      *sql.DB
	Path    string
	Seconds bool // store dates in seconds, like pre-10.13 databases
}

func New(t testing.TB) *Fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	f := &Fixture{t: t, db: db, Path: path}
	t.Cleanup(func() { db.Close() })
	return f
}

func (f *Fixture) insert(query string, args ...any) int64 {
	f.t.Helper()
	res, err := f.db.Exec(query, args...)
	require.NoError(f.t, err)
	id, err := res.LastInsertId()
	require.NoError(f.t, err)
	return id
}

func (f *Fixture) Handle(id string) int64 {
	return f.insert("INSERT INTO handle (id) VALUES (?)", id)
}

// Chat creates a chat joined to the given handle row ids.
func (f *Fixture) Chat(handleIDs ...int64) int64 {
	chatID := f.insert("INSERT INTO chat (chat_identifier) VALUES ('')")
	for _, h := range handleIDs {
		f.insert("INSERT INTO chat_handle_join (chat_id, handle_id) VALUES (?, ?)", chatID, h)
	}
	return chatID
}

type Message struct {
	Chat     int64
	Handle   int64
	At       time.Time
	FromMe   bool
	CallerID string
	Text     *string // nil stores NULL
}

func Text(s string) *string { return &s }

func (f *Fixture) Message(m Message) int64 {
	var date int64
	if f.Seconds {
		date = m.At.Unix() - appleEpoch.Unix()
	} else {
		date = m.At.Sub(appleEpoch).Nanoseconds()
	}
	fromMe := 0
	if m.FromMe {
		fromMe = 1
	}
	var caller any
	if m.CallerID != "" {
		caller = m.CallerID
	}
	var text any
	if m.Text != nil {
		text = *m.Text
	}
	id := f.insert(
		"INSERT INTO message (date, handle_id, destination_caller_id, is_from_me, text) VALUES (?, ?, ?, ?, ?)",
		date, m.Handle, caller, fromMe, text,
	)
	f.insert("INSERT INTO chat_message_join (chat_id, message_id) VALUES (?, ?)", m.Chat, id)
	return id
}

type Attachment struct {
	Message      int64
	Filename     string
	TransferName string
	State        int // 5 is a finished transfer
	Hidden       bool
}

func (f *Fixture) Attachment(a Attachment) int64 {
	hidden := 0
	if a.Hidden {
		hidden = 1
	}
	id := f.insert(
		"INSERT INTO attachment (filename, transfer_name, transfer_state, hide_attachment) VALUES (?, ?, ?, ?)",
		a.Filename, a.TransferName, a.State, hidden,
	)
	f.insert("INSERT INTO message_attachment_join (message_id, attachment_id) VALUES (?, ?)", a.Message, id)
	return id
}
