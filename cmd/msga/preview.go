package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/msga/internal/archive"
	"github.com/Zuo-Peng/msga/internal/chatdb"
)

func previewCmd(g *globalFlags) *cobra.Command {
	var chat string

	cmd := &cobra.Command{
		Use:   "preview <YYYY-MM-DD>",
		Short: "Render one day from the database to stdout without writing the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := archive.ParseDay(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, *g)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			db, err := chatdb.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			chats, err := db.Chats()
			if err != nil {
				return err
			}

			files, err := archive.RenderDay(db, chats, day, archive.Options{
				TimestampFormat: cfg.TimestampFormat,
				DayFormat:       cfg.DayFormat,
				Location:        loc,
				Color:           isTerminal(cmd),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			shown := 0
			for _, f := range files {
				if chat != "" && !strings.Contains(strings.ToLower(f.Chat.String()), strings.ToLower(chat)) {
					continue
				}
				if shown > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "=== %s (%s) ===\n", f.Chat, f.RelPath)
				fmt.Fprint(out, f.Content)
				shown++
			}
			if shown == 0 {
				fmt.Fprintf(out, "No messages on %s\n", day)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chat, "chat", "", "only chats whose participants contain this text")

	return cmd
}

// isTerminal reports whether the command writes straight to a terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
