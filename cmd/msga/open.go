package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/msga/internal/archive"
	"github.com/Zuo-Peng/msga/internal/open"
	"github.com/Zuo-Peng/msga/internal/scan"
)

func openCmd(g *globalFlags) *cobra.Command {
	var chat string
	var line int

	cmd := &cobra.Command{
		Use:   "open <YYYY-MM-DD>",
		Short: "Open an archived day file in $EDITOR",
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

			files, err := scan.ScanArchive(cfg.ArchiveDir)
			if err != nil {
				return fmt.Errorf("scan archive: %w", err)
			}
			f, err := open.Find(files, day.Format(cfg.DayFormat, loc), chat)
			if err != nil {
				return err
			}
			return open.File(open.Editor(), f.Path, line)
		},
	}

	cmd.Flags().StringVar(&chat, "chat", "", "chat whose participants contain this text")
	cmd.Flags().IntVar(&line, "line", 1, "line to jump to")

	return cmd
}
