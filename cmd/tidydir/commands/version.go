package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tidydir/tidydir/internal/version"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tidydir",
		Long:  `Print the version number of tidydir`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version.Info())
			return nil
		},
	}
}
