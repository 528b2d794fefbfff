package commands

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tidydir/tidydir/internal/config"
	"github.com/tidydir/tidydir/internal/generate"
	"github.com/tidydir/tidydir/internal/organize"
	"github.com/tidydir/tidydir/internal/review"
	"github.com/tidydir/tidydir/internal/runlog"
)

func NewOrganizeCmd() *cobra.Command {
	var (
		dir        string
		query      string
		depth      int
		model      string
		configPath string
		assumeYes  bool
		keepGoing  bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Ask the model for an organization plan and run it after review",
		Long: `Organize scans the directory for supported documents (PDF, DOCX, TXT,
MD), sends their previews with your query to the model, shows you the
proposed commands, and executes them only after you answer yes.

A declined review is a normal outcome and exits 0.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if model != "" {
				cfg.Model = model
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}

			var prompter review.Prompter
			switch {
			case assumeYes:
				prompter = review.StaticPrompter{Reply: "yes"}
			case isatty.IsTerminal(os.Stdin.Fd()):
				prompter = review.HuhPrompter{}
			default:
				prompter = &review.ReaderPrompter{In: os.Stdin, Out: os.Stdout}
			}

			outcome, err := organize.Run(
				cmd.Context(),
				cfg,
				organize.Options{
					Root:      dir,
					Query:     query,
					Depth:     depth,
					DryRun:    dryRun,
					KeepGoing: keepGoing,
				},
				generate.NewGemini(cfg),
				prompter,
				runlog.New(cfg.LogFile),
			)
			if err != nil {
				return err
			}

			switch {
			case outcome.Plan.Empty():
				fmt.Println("Nothing to do.")
			case outcome.State == review.StateRejected:
				fmt.Println("Plan rejected, nothing executed.")
			case dryRun:
				fmt.Println("Dry run complete, nothing executed.")
			default:
				fmt.Printf("Done: %d command(s) executed.\n", len(outcome.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to organize (required)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "What to do with the files (required)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Traversal depth (overrides config; default 1)")
	cmd.Flags().StringVar(&model, "model", "", "Model ID (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", defaultConfigFile, "Config file path")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Approve the plan without prompting")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Run remaining commands even after a failure")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the approved commands without executing them")

	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}
