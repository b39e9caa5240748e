package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reportseek/reportseek/internal/output"
	"github.com/reportseek/reportseek/internal/query"
	"github.com/reportseek/reportseek/internal/search"
)

type searchOptions struct {
	user     string
	limit    int
	rangeMin int
	rangeMax int
	boolean  bool
	like     bool
	format   string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed reports",
		Long: `Search the indexed reports by keyword relevance.

Work-order numbers (like 8292-05), locations, and domain terms are
weighted ahead of ordinary words. With --boolean, AND/OR words in the
query combine terms instead of being searched literally.

Examples:
  reportseek search "boring holes near Halawa"
  reportseek search "work order 8292-05 delays"
  reportseek search "Halawa AND drilling" --boolean
  reportseek search "grading permits" --range-min 7000 --range-max 9000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.user, "user", "u", "", "User identity for cache bucketing")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().IntVar(&opts.rangeMin, "range-min", 0, "Minimum work-order number")
	cmd.Flags().IntVar(&opts.rangeMax, "range-max", 0, "Maximum work-order number")
	cmd.Flags().BoolVar(&opts.boolean, "boolean", false, "Treat AND/OR in the query as connectives")
	cmd.Flags().BoolVar(&opts.like, "like", false, "Use substring matching instead of full-text search")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, rawQuery string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	docStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer docStore.Close()

	var extra []search.EngineOption
	if opts.like {
		extra = append(extra, search.WithQueryMode(query.ModeLike))
	}
	if opts.limit > 0 {
		extra = append(extra, search.WithTopK(opts.limit))
	}

	engine, saveCache := buildEngine(cfg, docStore, extra...)
	defer saveCache()

	req := search.Request{
		Query:           rawQuery,
		User:            opts.user,
		UseBooleanLogic: opts.boolean,
	}
	if cmd.Flags().Changed("range-min") {
		req.RangeMin = &opts.rangeMin
	}
	if cmd.Flags().Changed("range-max") {
		req.RangeMax = &opts.rangeMax
	}

	resp, err := engine.Search(cmd.Context(), req)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	output.NewRenderer(cmd.OutOrStdout()).SearchResults(resp)
	return nil
}
