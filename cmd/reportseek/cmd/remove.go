package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reportseek/reportseek/internal/output"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <filename>...",
		Short: "Remove documents from the index",
		Long: `Remove documents from the document store by filename.

Examples:
  reportseek remove 8292-05.txt
  reportseek remove 8292-05.txt 7105-01.txt`,
		Args: cobra.MinimumNArgs(1),
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

			ing := newIngester(cfg, docStore, engine)
			if err := ing.Remove(cmd.Context(), args); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d document(s)\n", len(args))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexed documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			docStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer docStore.Close()

			filenames, err := docStore.List(cmd.Context())
			if err != nil {
				return err
			}

			output.NewRenderer(cmd.OutOrStdout()).FileList(filenames)
			return nil
		},
	}
}
