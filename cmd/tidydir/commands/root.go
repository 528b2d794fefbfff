package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "tidydir.yml"

func NewRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "tidydir",
		Short: "Content-aware file organization powered by a generative model",
		Long: `tidydir reads previews of the documents in a directory, asks a
generative model how to organize them for your query, and executes the
proposed commands after you approve them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q", logLevel)
			}
			log.SetLevel(level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(NewOrganizeCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewMatchCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
