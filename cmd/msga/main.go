package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/msga/internal/archive"
	"github.com/Zuo-Peng/msga/internal/chatdb"
	"github.com/Zuo-Peng/msga/internal/config"
	"github.com/Zuo-Peng/msga/internal/progress"
)

var version = "dev"

// flags shared by every subcommand; empty means "keep the configured value"
type globalFlags struct {
	db       string
	dir      string
	tsFormat string
	dayFmt   string
	tz       string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var g globalFlags
	var noAttachments, noGit, noPush bool

	cmd := &cobra.Command{
		Use:   "msga",
		Short: "Messages archiver - export chat.db into a git-versioned tree of daily transcripts",
		Long: `Exports every complete day of the Messages database into <dir>/<chat>/<day>.txt,
copies attachments next to the transcripts and commits each day to git.
Runs resume from the date stored in <dir>/lastrun.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if noAttachments {
				cfg.Attachments = false
			}
			if noGit {
				cfg.Git = false
			}
			if noPush {
				cfg.Push = false
			}
			return runExport(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.db, "db", "c", "", "Messages database path (default ~/Library/Messages/chat.db)")
	pf.StringVarP(&g.dir, "dir", "d", "", "archive directory (default ./messages)")
	pf.StringVarP(&g.tsFormat, "fmt", "f", "", "strftime format of message timestamps (default \"%Y-%m-%d %H:%M:%S\")")
	pf.StringVarP(&g.dayFmt, "day-fmt", "z", "", "strftime format of day file names and commit messages (default \"%Y-%m-%d\")")
	pf.StringVarP(&g.tz, "tz", "t", "", "timezone for day boundaries and timestamps (default Local)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.Flags().BoolVarP(&noAttachments, "no-attachments", "a", false, "do not archive attachments")
	cmd.Flags().BoolVarP(&noGit, "no-git", "g", false, "do not use git")
	cmd.Flags().BoolVar(&noPush, "no-push", false, "never push to the remote")

	cmd.AddCommand(previewCmd(&g))
	cmd.AddCommand(browseCmd(&g))
	cmd.AddCommand(openCmd(&g))
	cmd.AddCommand(doctorCmd(&g))

	return cmd
}

// loadConfig layers the command-line flags over the file and environment
// configuration, validates the result and sets up logging.
func loadConfig(cmd *cobra.Command, g globalFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	overrides := []struct {
		value string
		dst   *string
	}{
		{g.db, &cfg.DBPath},
		{g.dir, &cfg.ArchiveDir},
		{g.tsFormat, &cfg.TimestampFormat},
		{g.dayFmt, &cfg.DayFormat},
		{g.tz, &cfg.Timezone},
		{g.logLevel, &cfg.LogLevel},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.dst = o.value
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"db": cfg.DBPath, "dir": cfg.ArchiveDir, "tz": cfg.Timezone}).Debug("configuration loaded")
	return cfg, nil
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(lvl)
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, out io.Writer) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	db, err := chatdb.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	bar := progress.New(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), cfg.LogLevel)

	exporter := archive.NewExporter(db, archive.Options{
		Dir:             cfg.ArchiveDir,
		TimestampFormat: cfg.TimestampFormat,
		DayFormat:       cfg.DayFormat,
		Location:        loc,
		Attachments:     cfg.Attachments,
		Git:             cfg.Git,
		Push:            cfg.Push,
		Home:            home,
	}, archive.WithProgress(bar))

	stats, err := exporter.Run(ctx)
	if err != nil {
		return err
	}
	if stats.Missing > 0 {
		log.WithField("missing", stats.Missing).Warn("some attachments were not found on disk")
	}
	fmt.Fprintln(out, stats.String())
	return nil
}
