package render

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/ncruces/go-strftime"

	"github.com/Zuo-Peng/msga/internal/chatdb"
)

const (
	colorReset  = "\033[0m"
	colorMe     = "\033[1;34m" // bold blue
	colorOther  = "\033[1;32m" // bold green
	colorDim    = "\033[2m"
	colorAttach = "\033[36m" // cyan
)

// objectReplacement marks where an attachment sat inline in the message body.
const objectReplacement = "\ufffc"

type Options struct {
	TimestampFormat string         // strftime pattern
	Location        *time.Location // nil = UTC
	Color           bool           // ANSI colors, for terminals only
}

func (o Options) loc() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Timestamp formats t in the options' location.
func Timestamp(t time.Time, opts Options) string {
	return strftime.Format(opts.TimestampFormat, t.In(opts.loc()))
}

// SenderWidth is the widest sender among messages, in terminal cells.
func SenderWidth(messages []chatdb.Message) int {
	w := 0
	for _, m := range messages {
		if sw := runewidth.StringWidth(m.Sender()); sw > w {
			w = sw
		}
	}
	return w
}

// Line renders one message as "<timestamp> <sender>: <text>" with the sender
// right-aligned to senderWidth. Continuation lines of a multi-line body are
// indented to the text column.
func Line(m chatdb.Message, senderWidth int, opts Options) string {
	ts := Timestamp(m.Date, opts)
	indent := strings.Repeat(" ", runewidth.StringWidth(ts)+1+senderWidth+2)

	text := strings.Join(splitLines(m.Text), "\n"+indent)

	var tokens []string
	if len(m.Attachments) > 0 {
		tokens = make([]string, len(m.Attachments))
		for i, a := range m.Attachments {
			tokens[i] = a.String()
		}
		text = strings.TrimSpace(strings.ReplaceAll(text, objectReplacement, ""))
	}

	sender := runewidth.FillLeft(m.Sender(), senderWidth)

	if opts.Color {
		senderColor := colorOther
		if m.IsFromMe {
			senderColor = colorMe
		}
		ts = colorDim + ts + colorReset
		sender = senderColor + sender + colorReset
		for i, tok := range tokens {
			tokens[i] = colorAttach + tok + colorReset
		}
	}

	if len(tokens) > 0 {
		joined := strings.Join(tokens, " ")
		if text == "" {
			text = joined
		} else {
			text = text + " " + joined
		}
	}

	return ts + " " + sender + ": " + text
}

// Day renders the messages of one chat-day, one line per message, each
// newline terminated.
func Day(messages []chatdb.Message, opts Options) string {
	width := SenderWidth(messages)

	var b strings.Builder
	for _, m := range messages {
		b.WriteString(Line(m, width, opts))
		b.WriteString("\n")
	}
	return b.String()
}

// splitLines splits on \n, \r\n and \r and drops a single trailing line
// break.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
