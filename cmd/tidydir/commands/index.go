package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tidydir/tidydir/internal/config"
	"github.com/tidydir/tidydir/internal/extract"
	"github.com/tidydir/tidydir/internal/index"
)

func NewIndexCmd() *cobra.Command {
	var depth int
	var configPath string

	cmd := &cobra.Command{
		Use:   "index <directory>",
		Short: "Extract previews and store them in the local content index",
		Long: `Index extracts text previews from every supported document under the
directory and stores them in .tidydir/index.db, so later "tidydir match"
calls run offline. No remote service is involved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			dir := args[0]
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("invalid directory %s: %w", dir, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("invalid directory %s: not a directory", dir)
			}

			if depth < 1 {
				depth = cfg.Depth
			}

			extractor := extract.New(os.DirFS(dir), cfg.PreviewBytes)
			res, err := extractor.Extract(depth)
			if err != nil {
				return err
			}
			if res.Warnings != nil {
				for _, w := range res.Warnings.Errors {
					log.Warn("extraction", "err", w)
				}
			}

			store, err := index.Open(dir)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Put(res.Entries); err != nil {
				return err
			}

			total, err := store.Count()
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d file(s) in %s (%d total in index).\n", len(res.Entries), dir, total)
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "Traversal depth (overrides config; default 1)")
	cmd.Flags().StringVar(&configPath, "config", defaultConfigFile, "Config file path")

	return cmd
}
