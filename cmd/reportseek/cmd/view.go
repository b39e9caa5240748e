package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newViewCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "view <filename> <query>",
		Short: "Show matching sentences from one document",
		Long: `Show every sentence of a single document that matches the query,
ordered by how many query terms it contains. Matched terms are marked
inline.

Examples:
  reportseek view 8292-05.txt "groundwater depth"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			docStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer docStore.Close()

			engine, saveCache := buildEngine(cfg, docStore)
			defer saveCache()

			view, err := engine.QuickView(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			if len(view.Snippets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching sentences.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.Filename)
			for _, s := range view.Snippets {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", s)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
