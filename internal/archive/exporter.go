package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Zuo-Peng/msga/internal/chatdb"
	"github.com/Zuo-Peng/msga/internal/git"
	"github.com/Zuo-Peng/msga/internal/render"
)

// Source is the message store an archive is exported from.
type Source interface {
	Chats() (map[int64]chatdb.Chat, error)
	Earliest() (time.Time, error)
	MessagesBetween(start, end time.Time) ([]chatdb.Message, error)
}

// Progress receives one step per exported day.
type Progress interface {
	Start(total int)
	Step(label string)
	Stop()
}

type Options struct {
	Dir             string
	TimestampFormat string
	DayFormat       string
	Location        *time.Location
	Attachments     bool
	Git             bool
	Push            bool
	Home            string // resolves ~ in attachment paths
	Color           bool   // ANSI colors in RenderDay output; never used for files
}

type Stats struct {
	Days        int
	Chats       int
	Messages    int
	Attachments int
	Missing     int
	Commits     int
	Pushed      bool
}

func (s Stats) String() string {
	return fmt.Sprintf("days=%d chats=%d messages=%d attachments=%d missing=%d commits=%d pushed=%t",
		s.Days, s.Chats, s.Messages, s.Attachments, s.Missing, s.Commits, s.Pushed)
}

type Exporter struct {
	src      Source
	opts     Options
	executor git.CommandExecutor
	lookGit  func() error
	progress Progress
	now      func() time.Time
}

type Option func(*Exporter)

// WithGitExecutor replaces the git subprocess runner. The git binary is not
// required when an executor is injected.
func WithGitExecutor(ex git.CommandExecutor) Option {
	return func(e *Exporter) {
		e.executor = ex
		e.lookGit = func() error { return nil }
	}
}

func WithProgress(p Progress) Option {
	return func(e *Exporter) { e.progress = p }
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

func NewExporter(src Source, opts Options, options ...Option) *Exporter {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	e := &Exporter{
		src:      src,
		opts:     opts,
		executor: git.NewExecExecutor(),
		lookGit:  git.LookPath,
		progress: nopProgress{},
		now:      time.Now,
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Run exports every complete day not yet in the archive: from the lastrun
// marker (or the earliest message) up to but excluding today.
func (e *Exporter) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	dir := e.opts.Dir

	if err := ensureWritableDir(dir); err != nil {
		return stats, err
	}

	var repo *git.Repo
	if e.opts.Git {
		if err := e.lookGit(); err != nil {
			return stats, err
		}
		repo = git.NewRepoWithExecutor(dir, e.executor)
		if !repo.IsRepository() {
			log.WithField("dir", dir).Info("initialising git repository")
			if err := repo.Init(ctx); err != nil {
				return stats, fmt.Errorf("git init: %w", err)
			}
		}
	}

	chats, err := e.src.Chats()
	if err != nil {
		return stats, fmt.Errorf("load chats: %w", err)
	}

	start, ok, err := ReadLastRun(dir)
	if err != nil {
		return stats, err
	}
	if !ok {
		earliest, err := e.src.Earliest()
		if errors.Is(err, chatdb.ErrNoMessages) {
			log.Info("no messages to archive")
			return stats, nil
		}
		if err != nil {
			return stats, err
		}
		start = DayOf(earliest, e.opts.Location)
	}

	today := DayOf(e.now(), e.opts.Location)
	total := start.DaysUntil(today)
	log.WithFields(log.Fields{"from": start.String(), "to": today.String(), "days": total}).Info("exporting")

	// the bar owns the terminal until Stop; nothing logs at info in between
	e.progress.Start(total)
	err = e.exportDays(ctx, repo, chats, start, today, &stats)
	e.progress.Stop()
	if err != nil {
		return stats, err
	}

	if repo != nil && e.opts.Push {
		hasRemote, err := repo.HasRemote(ctx)
		if err != nil {
			return stats, fmt.Errorf("git remote: %w", err)
		}
		if hasRemote {
			log.Info("pushing archive")
			if err := repo.Push(ctx); err != nil {
				return stats, fmt.Errorf("git push: %w", err)
			}
			stats.Pushed = true
		}
	}

	return stats, nil
}

func (e *Exporter) exportDays(ctx context.Context, repo *git.Repo, chats map[int64]chatdb.Chat, start, end Day, stats *Stats) error {
	for day := start; day.Before(end); day = day.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.exportDay(ctx, repo, chats, day, stats); err != nil {
			return fmt.Errorf("export %s: %w", day, err)
		}
		e.progress.Step(day.String())
	}
	return nil
}

func (e *Exporter) exportDay(ctx context.Context, repo *git.Repo, chats map[int64]chatdb.Chat, day Day, stats *Stats) error {
	opts := e.opts
	opts.Color = false
	files, err := RenderDay(e.src, chats, day, opts)
	if err != nil {
		return err
	}

	dayLog := log.WithField("day", day.String())
	var staged []string

	for _, f := range files {
		path := filepath.Join(e.opts.Dir, f.RelPath)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create chat dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("write messages: %w", err)
		}
		staged = append(staged, f.RelPath)
		stats.Chats++
		stats.Messages += len(f.Messages)
		dayLog.WithFields(log.Fields{"chat": f.Chat.String(), "messages": len(f.Messages)}).Debug("wrote chat")

		if !e.opts.Attachments {
			continue
		}
		chatDir := filepath.Dir(f.RelPath)
		for _, m := range f.Messages {
			for _, a := range m.Attachments {
				rel := filepath.Join(chatDir, a.DstName())
				copied, err := copyAttachment(a.SrcPath(e.opts.Home), filepath.Join(e.opts.Dir, rel))
				if err != nil {
					return err
				}
				if !copied {
					stats.Missing++
					dayLog.WithField("attachment", a.Filename).Debug("attachment source missing, skipped")
					continue
				}
				stats.Attachments++
				staged = append(staged, rel)
			}
		}
	}

	next := day.Next()
	if err := WriteLastRun(e.opts.Dir, next); err != nil {
		return err
	}
	stats.Days++

	if repo == nil {
		return nil
	}
	staged = append(staged, LastRunFile)
	if err := repo.Add(ctx, staged...); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	message := "Chat Archive for " + day.Format(e.opts.DayFormat, e.opts.Location)
	// last second of the day, so history dates match the archived day
	if err := repo.Commit(ctx, message, next.Start(e.opts.Location).Add(-time.Second)); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	stats.Commits++
	return nil
}

// ChatFile is the rendered transcript of one chat directory for one day.
type ChatFile struct {
	Chat     chatdb.Chat
	RelPath  string // relative to the archive root
	Content  string
	Messages []chatdb.Message
}

// RenderDay fetches a day bucket from src and renders one file per chat
// directory. Nothing is written.
func RenderDay(src Source, chats map[int64]chatdb.Chat, day Day, opts Options) ([]ChatFile, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	messages, err := src.MessagesBetween(day.Start(loc), day.Next().Start(loc))
	if err != nil {
		return nil, err
	}

	ropts := render.Options{
		TimestampFormat: opts.TimestampFormat,
		Location:        loc,
		Color:           opts.Color,
	}
	name := day.Format(opts.DayFormat, loc) + ".txt"

	var files []ChatFile
	for _, group := range GroupByDir(messages, chats) {
		files = append(files, ChatFile{
			Chat:     group.Chat,
			RelPath:  filepath.Join(group.Dir, name),
			Content:  render.Day(group.Messages, ropts),
			Messages: group.Messages,
		})
	}
	return files, nil
}

// copyAttachment copies src to dst. It reports false without error when
// src does not exist, which happens for attachments offloaded to iCloud.
func copyAttachment(src, dst string) (bool, error) {
	if src == "" {
		return false, nil
	}
	in, err := os.Open(src)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open attachment: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return false, fmt.Errorf("create attachment: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, fmt.Errorf("copy attachment: %w", err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("copy attachment: %w", err)
	}
	return true, nil
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create archive dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".msga-write-*")
	if err != nil {
		return fmt.Errorf("archive dir %s is not writable: %w", dir, err)
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}

type nopProgress struct{}

func (nopProgress) Start(int)   {}
func (nopProgress) Step(string) {}
func (nopProgress) Stop()       {}
