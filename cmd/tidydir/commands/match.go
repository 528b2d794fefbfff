package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tidydir/tidydir/internal/index"
)

func NewMatchCmd() *cobra.Command {
	var baseDir string

	cmd := &cobra.Command{
		Use:   "match <query> <target-dir>",
		Short: "Symlink indexed files matching a keyword into a directory",
		Long: `Match searches the local content index for files whose preview or name
contains the query and symlinks them into the target directory. Run
"tidydir index" first to populate the index. Files are never moved or
copied.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, targetDir := args[0], args[1]

			store, err := index.Open(baseDir)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Match(query)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No indexed files match.")
				return nil
			}

			if err := os.MkdirAll(targetDir, 0o755); err != nil {
				return fmt.Errorf("create target directory: %w", err)
			}

			absBase, err := filepath.Abs(baseDir)
			if err != nil {
				return err
			}

			linked := 0
			for _, entry := range entries {
				source := filepath.Join(absBase, filepath.FromSlash(entry.Path))
				dest := filepath.Join(targetDir, filepath.Base(entry.Path))
				if err := os.Symlink(source, dest); err != nil {
					if errors.Is(err, os.ErrExist) {
						continue
					}
					return fmt.Errorf("link %s: %w", dest, err)
				}
				linked++
			}

			fmt.Printf("Linked %d of %d matching file(s) into %s.\n", linked, len(entries), targetDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseDir, "base-dir", ".", "Directory whose content index to search")

	return cmd
}
