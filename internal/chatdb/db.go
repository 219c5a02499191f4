package chatdb

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrDatabaseNotFound = errors.New("database not found")
	ErrNoMessages       = errors.New("database has no messages")
)

// appleEpoch is 2001-01-01T00:00:00Z in Unix seconds.
const appleEpoch = 978307200

// Databases written before macOS 10.13 store seconds, later ones nanoseconds.
// Any nanosecond value after 2001-01-01T00:01:40Z exceeds this bound.
const nanosThreshold = 100_000_000_000

const chatsQuery = `
SELECT chat.ROWID, handle.ROWID, handle.id
FROM chat
INNER JOIN chat_handle_join ON chat_handle_join.chat_id = chat.ROWID
INNER JOIN handle ON handle.ROWID = chat_handle_join.handle_id
ORDER BY chat.ROWID, handle.id`

const bareChatsQuery = `SELECT ROWID FROM chat ORDER BY ROWID`

const messagesQuery = `
SELECT message.ROWID, message.date, chat_message_join.chat_id, handle.id,
       message.destination_caller_id, message.is_from_me, message.text,
       attachment.ROWID, attachment.transfer_name, attachment.filename
FROM message
INNER JOIN chat_message_join ON chat_message_join.message_id = message.ROWID
LEFT JOIN handle ON handle.ROWID = message.handle_id
LEFT JOIN message_attachment_join ON message_attachment_join.message_id = message.ROWID
LEFT JOIN attachment ON attachment.ROWID = message_attachment_join.attachment_id
    AND attachment.transfer_state = 5 AND attachment.hide_attachment != 1
WHERE message.date >= ? AND message.date < ?
ORDER BY message.date, message.ROWID, attachment.ROWID`

// DB is a read-only view of a Messages chat.db.
type DB struct {
	db    *sql.DB
	nanos bool
}

func Open(dbPath string) (*DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("db path '%s' does not exist: %w", dbPath, ErrDatabaseNotFound)
		}
		return nil, fmt.Errorf("stat db: %w", err)
	}

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	dsn := (&url.URL{Scheme: "file", Path: abs, RawQuery: "mode=ro"}).String()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}

	d := &DB{db: db}
	if err := d.detectUnit(); err != nil {
		db.Close()
		return nil, fmt.Errorf("read db: %w", err)
	}
	return d, nil
}

func (d *DB) detectUnit() error {
	var latest sql.NullInt64
	if err := d.db.QueryRow("SELECT MAX(date) FROM message").Scan(&latest); err != nil {
		return err
	}
	d.nanos = !latest.Valid || latest.Int64 >= nanosThreshold
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) toTime(v int64) time.Time {
	if d.nanos {
		return time.Unix(appleEpoch, v).UTC()
	}
	return time.Unix(appleEpoch+v, 0).UTC()
}

func (d *DB) fromTime(t time.Time) int64 {
	if d.nanos {
		return t.Sub(time.Unix(appleEpoch, 0)).Nanoseconds()
	}
	return t.Unix() - appleEpoch
}

// Chats returns every chat keyed by row id. Chats without participant rows
// are included with no participants.
func (d *DB) Chats() (map[int64]Chat, error) {
	chats := make(map[int64]Chat)

	rows, err := d.db.Query(chatsQuery)
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chatID int64
		var p Participant
		if err := rows.Scan(&chatID, &p.HandleID, &p.Handle); err != nil {
			return nil, err
		}
		c := chats[chatID]
		c.ID = chatID
		c.Participants = append(c.Participants, p)
		chats[chatID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	bare, err := d.db.Query(bareChatsQuery)
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	defer bare.Close()
	for bare.Next() {
		var chatID int64
		if err := bare.Scan(&chatID); err != nil {
			return nil, err
		}
		if _, ok := chats[chatID]; !ok {
			chats[chatID] = Chat{ID: chatID}
		}
	}
	return chats, bare.Err()
}

// Earliest returns the timestamp of the oldest message.
func (d *DB) Earliest() (time.Time, error) {
	var v sql.NullInt64
	if err := d.db.QueryRow("SELECT MIN(date) FROM message").Scan(&v); err != nil {
		return time.Time{}, fmt.Errorf("query earliest: %w", err)
	}
	if !v.Valid {
		return time.Time{}, ErrNoMessages
	}
	return d.toTime(v.Int64), nil
}

// MessagesBetween returns the messages dated in [start, end), oldest first,
// each carrying its finished, visible attachments.
func (d *DB) MessagesBetween(start, end time.Time) ([]Message, error) {
	rows, err := d.db.Query(messagesQuery, d.fromTime(start), d.fromTime(end))
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	byID := make(map[int64]int)

	for rows.Next() {
		var (
			id, date, chatID   int64
			handle, callerID   sql.NullString
			isFromMe           sql.NullInt64
			text               sql.NullString
			attID              sql.NullInt64
			transferName, file sql.NullString
		)
		if err := rows.Scan(&id, &date, &chatID, &handle, &callerID, &isFromMe, &text, &attID, &transferName, &file); err != nil {
			return nil, err
		}

		idx, ok := byID[id]
		if !ok {
			messages = append(messages, Message{
				ID:       id,
				Date:     d.toTime(date),
				ChatID:   chatID,
				Handle:   handle.String,
				CallerID: callerID.String,
				IsFromMe: isFromMe.Int64 == 1,
				Text:     text.String,
			})
			idx = len(messages) - 1
			byID[id] = idx
		}

		if attID.Valid {
			messages[idx].Attachments = append(messages[idx].Attachments, Attachment{
				ID:           attID.Int64,
				TransferName: transferName.String,
				Filename:     file.String,
			})
		}
	}
	return messages, rows.Err()
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM message").Scan(&n)
	return n, err
}

func (d *DB) ChatCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM chat").Scan(&n)
	return n, err
}

func (d *DB) AttachmentCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM attachment WHERE transfer_state = 5 AND hide_attachment != 1").Scan(&n)
	return n, err
}
