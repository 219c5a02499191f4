package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/msga/internal/scan"
	"github.com/Zuo-Peng/msga/internal/tui"
)

func browseCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the archived day files",
		Long:  `Opens a TUI listing every archived chat-day with a preview panel. Type to filter by chat or day; Enter copies the file path. When stdout is not a terminal the list is printed instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *g)
			if err != nil {
				return err
			}

			files, err := scan.ScanArchive(cfg.ArchiveDir)
			if err != nil {
				return fmt.Errorf("scan archive: %w", err)
			}

			if isTerminal(cmd) {
				return tui.Run(files, cmd.OutOrStdout())
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Day, f.Chat, f.Path)
			}
			return w.Flush()
		},
	}
}
