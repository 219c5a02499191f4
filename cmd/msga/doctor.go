package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/msga/internal/archive"
	"github.com/Zuo-Peng/msga/internal/chatdb"
	"github.com/Zuo-Peng/msga/internal/config"
	"github.com/Zuo-Peng/msga/internal/git"
	"github.com/Zuo-Peng/msga/internal/scan"
)

func doctorCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify the database, the archive directory and git",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "=== Config ===")
			home, _ := os.UserHomeDir()
			checkFile(out, "File", config.Path(home))
			fmt.Fprintf(out, "  Timezone: %s\n", cfg.Timezone)
			fmt.Fprintf(out, "  Timestamp format: %s\n", cfg.TimestampFormat)
			fmt.Fprintf(out, "  Day format: %s\n", cfg.DayFormat)
			fmt.Fprintf(out, "  Attachments: %t  Git: %t  Push: %t\n", cfg.Attachments, cfg.Git, cfg.Push)

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "\n=== Database ===")
			checkDatabase(out, cfg.DBPath, loc)

			fmt.Fprintln(out, "\n=== Archive ===")
			checkArchive(out, cfg.ArchiveDir)

			fmt.Fprintln(out, "\n=== Git ===")
			checkGit(cmd, out, cfg)

			return nil
		},
	}
}

func checkFile(out io.Writer, name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "  %s: %s (NOT FOUND)\n", name, path)
	} else if info.IsDir() {
		fmt.Fprintf(out, "  %s: %s (IS A DIRECTORY)\n", name, path)
	} else {
		fmt.Fprintf(out, "  %s: %s (OK, %s)\n", name, path, humanize.Bytes(uint64(info.Size())))
	}
}

func checkDatabase(out io.Writer, path string, loc *time.Location) {
	checkFile(out, "Path", path)

	db, err := chatdb.Open(path)
	if err != nil {
		fmt.Fprintf(out, "  Status: %v\n", err)
		return
	}
	defer db.Close()

	counts := []struct {
		name string
		fn   func() (int, error)
	}{
		{"Messages", db.MessageCount},
		{"Chats", db.ChatCount},
		{"Attachments", db.AttachmentCount},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			fmt.Fprintf(out, "  %s: error: %v\n", c.name, err)
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", c.name, humanize.Comma(int64(n)))
	}

	earliest, err := db.Earliest()
	switch {
	case errors.Is(err, chatdb.ErrNoMessages):
		fmt.Fprintln(out, "  Earliest day: none (no messages)")
	case err != nil:
		fmt.Fprintf(out, "  Earliest day: error: %v\n", err)
	default:
		fmt.Fprintf(out, "  Earliest day: %s\n", archive.DayOf(earliest, loc))
	}
}

func checkArchive(out io.Writer, dir string) {
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		fmt.Fprintf(out, "  Dir: %s (NOT FOUND, created on first run)\n", dir)
		return
	case !info.IsDir():
		fmt.Fprintf(out, "  Dir: %s (NOT A DIRECTORY)\n", dir)
		return
	}
	fmt.Fprintf(out, "  Dir: %s (OK)\n", dir)

	next, ok, err := archive.ReadLastRun(dir)
	switch {
	case err != nil:
		fmt.Fprintf(out, "  Next day: error: %v\n", err)
	case !ok:
		fmt.Fprintf(out, "  Next day: earliest message (no %s file)\n", archive.LastRunFile)
	default:
		fmt.Fprintf(out, "  Next day: %s\n", next)
	}

	files, err := scan.ScanArchive(dir)
	if err != nil {
		fmt.Fprintf(out, "  Scan error: %v\n", err)
		return
	}
	chats := make(map[string]struct{})
	var size int64
	for _, f := range files {
		chats[f.Chat] = struct{}{}
		size += f.Size
	}
	fmt.Fprintf(out, "  Day files: %d in %d chats (%s)\n", len(files), len(chats), humanize.Bytes(uint64(size)))
}

func checkGit(cmd *cobra.Command, out io.Writer, cfg *config.Config) {
	if !cfg.Git {
		fmt.Fprintln(out, "  Disabled")
		return
	}
	if err := git.LookPath(); err != nil {
		fmt.Fprintf(out, "  Executable: %v\n", err)
		return
	}
	fmt.Fprintln(out, "  Executable: OK")

	repo := git.NewRepo(cfg.ArchiveDir)
	if !repo.IsRepository() {
		fmt.Fprintf(out, "  Repository: %s (NOT INITIALISED, created on first run)\n", filepath.Join(cfg.ArchiveDir, ".git"))
		return
	}
	fmt.Fprintln(out, "  Repository: OK")

	hasRemote, err := repo.HasRemote(cmd.Context())
	switch {
	case err != nil:
		fmt.Fprintf(out, "  Remote: error: %v\n", err)
	case !hasRemote:
		fmt.Fprintln(out, "  Remote: none (push skipped)")
	case !cfg.Push:
		fmt.Fprintln(out, "  Remote: configured (push disabled)")
	default:
		fmt.Fprintln(out, "  Remote: configured")
	}
}
