package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/Zuo-Peng/msga/internal/chatdb"
)

const isoDay = "2006-01-02"

// Day is a calendar date, independent of any timezone.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf truncates t to its calendar day in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(isoDay, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayOf(t, time.UTC), nil
}

// Start is local midnight of the day in loc.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) Next() Day {
	return DayOf(time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, time.UTC), time.UTC)
}

func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// DaysUntil counts the days from d up to but excluding end.
func (d Day) DaysUntil(end Day) int {
	if !d.Before(end) {
		return 0
	}
	a := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	b := time.Date(end.Year, end.Month, end.Day, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func (d Day) String() string {
	return d.Start(time.UTC).Format(isoDay)
}

// Format renders the day with a strftime pattern at its midnight in loc, so
// zone verbs print the zone the day was bucketed in.
func (d Day) Format(pattern string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return strftime.Format(pattern, d.Start(loc))
}

// FileGroup is the share of a day bucket that goes into one archive file.
// Distinct chats with the same participants, such as the iMessage and the
// SMS thread with one contact, map to the same directory and share a group.
type FileGroup struct {
	Chat     chatdb.Chat // first chat seen for the directory
	Dir      string
	Messages []chatdb.Message
}

// GroupByDir splits a day's messages by chat directory. Groups are ordered
// by their first message and keep the messages in input order, so merged
// chats stay sorted by date and row id. Chats missing from chats are named
// by id.
func GroupByDir(messages []chatdb.Message, chats map[int64]chatdb.Chat) []FileGroup {
	var groups []FileGroup
	idx := make(map[string]int)
	for _, m := range messages {
		chat, ok := chats[m.ChatID]
		if !ok {
			chat = chatdb.Chat{ID: m.ChatID}
		}
		dir := chat.DirName()
		i, ok := idx[dir]
		if !ok {
			groups = append(groups, FileGroup{Chat: chat, Dir: dir})
			i = len(groups) - 1
			idx[dir] = i
		}
		groups[i].Messages = append(groups[i].Messages, m)
	}
	return groups
}
