package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reportseek/reportseek/internal/ingest"
)

type ingestOptions struct {
	replace bool
	watch   bool
}

func newIngestCmd() *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest <dir-or-file>...",
		Short: "Ingest report text files into the index",
		Long: `Ingest .txt report files into the document store. A directory
argument ingests every .txt file directly inside it.

Already-indexed filenames are skipped unless --replace is given. With
--watch the directory is watched and new files are ingested as they
appear, until interrupted.

Examples:
  reportseek ingest ./reports
  reportseek ingest 8292-05.txt 7105-01.txt --replace
  reportseek ingest ./dropbox --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.replace, "replace", false, "Re-index files already in the store")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Watch the directory and ingest continuously")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string, opts ingestOptions) error {
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
	ing := newIngester(cfg, docStore, engine)

	if opts.watch {
		if len(args) != 1 {
			return fmt.Errorf("--watch takes exactly one directory")
		}
		debounce, err := time.ParseDuration(cfg.Ingest.WatchDebounce)
		if err != nil {
			debounce = 0
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", args[0])
		w := ingest.NewWatcher(ing, args[0], debounce, nil)
		return w.Run(cmd.Context())
	}

	total := ingest.Result{}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return err
		}

		var res *ingest.Result
		if info.IsDir() {
			res, err = ing.IngestDir(cmd.Context(), arg, opts.replace)
		} else {
			res, err = ing.IngestFiles(cmd.Context(), []string{arg}, opts.replace)
		}
		if err != nil {
			return err
		}
		total.Ingested += res.Ingested
		total.Skipped += res.Skipped
		total.Failed = append(total.Failed, res.Failed...)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d, skipped %d, failed %d\n",
		total.Ingested, total.Skipped, len(total.Failed))
	for _, name := range total.Failed {
		fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s\n", name)
	}
	return nil
}
