package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reportseek/reportseek/internal/output"
	"github.com/reportseek/reportseek/internal/search"
	"github.com/reportseek/reportseek/internal/session"
)

type askOptions struct {
	user      string
	boolean   bool
	noHistory bool
	format    string
}

func newAskCmd() *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the indexed reports",
		Long: `Ask a question and get an answer synthesized from the most
relevant reports. Without a configured summarizer the answer is
assembled from matching snippets instead.

Examples:
  reportseek ask "how long were drilling operations delayed at Halawa?"
  reportseek ask "what is the bearing capacity for work order 8292-05?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.user, "user", "u", "", "User identity for caching and history")
	cmd.Flags().BoolVar(&opts.boolean, "boolean", false, "Treat AND/OR in the question as connectives")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this exchange in history")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runAsk(cmd *cobra.Command, question string, opts askOptions) error {
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
	svc := buildService(cfg, engine)

	var sess *session.Session
	if !opts.noHistory {
		history, err := openHistory(cfg)
		if err != nil {
			return err
		}
		if history != nil {
			defer history.Close()
			sess = session.NewSession(opts.user, history)
		}
	}

	ans, err := svc.Ask(cmd.Context(), search.Request{
		Query:           question,
		User:            opts.user,
		UseBooleanLogic: opts.boolean,
	}, sess)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}

	output.NewRenderer(cmd.OutOrStdout()).Answer(ans)
	return nil
}
