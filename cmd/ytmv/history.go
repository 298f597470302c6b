package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytmv/ytmv/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently downloaded items",
	Example: `  ytmv history
  ytmv history --limit 10
  ytmv history --search "lofi" --json`,
	RunE: runHistoryCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum entries to show (0 for all)")
	historyCmd.Flags().StringP("search", "s", "", "Fuzzy-match titles")
	historyCmd.Flags().Bool("json", false, "Output as JSON")
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	query, _ := cmd.Flags().GetString("search")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := history.NewStore(cfg.History.Path)
	var entries []history.Entry
	if query != "" {
		entries = store.Search(query, limit)
	} else {
		entries = store.List(limit)
	}

	if asJSON {
		printJSON(entries)
		return nil
	}

	if len(entries) == 0 {
		if query != "" {
			fmt.Printf("No history entries matching %q\n", query)
		} else {
			fmt.Println("No downloads recorded yet")
		}
		return nil
	}

	fmt.Printf("Download history (%d):\n\n", len(entries))
	fmt.Printf("  %-16s %-15s %-44s\n", "WHEN", "MODE", "TITLE")
	fmt.Println("  " + strings.Repeat("-", 77))
	for _, e := range entries {
		title := e.Title
		if len(title) > 44 {
			title = title[:41] + "..."
		}
		fmt.Printf("  %-16s %-15s %-44s\n", e.Timestamp.Format("2006-01-02 15:04"), e.Mode, title)
	}
	return nil
}
