package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reportseek/reportseek/internal/output"
)

type historyOptions struct {
	user   string
	limit  int
	delete string
	format string
}

func newHistoryCmd() *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or prune past questions and answers",
		Long: `Show past question/answer exchanges, newest first.

Examples:
  reportseek history
  reportseek history --user alice --limit 5
  reportseek history --delete "drilling delays near Halawa?"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.user, "user", "u", "", "User whose history to show")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Maximum exchanges to show (0 for all)")
	cmd.Flags().StringVar(&opts.delete, "delete", "", "Delete exchanges matching this question")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runHistory(cmd *cobra.Command, opts historyOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in configuration")
	}

	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer history.Close()

	user := opts.user
	if user == "" {
		user = "guest"
	}

	if opts.delete != "" {
		if err := history.Delete(cmd.Context(), user, opts.delete); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
		return nil
	}

	records, err := history.List(cmd.Context(), user, opts.limit)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	output.NewRenderer(cmd.OutOrStdout()).History(records)
	return nil
}
