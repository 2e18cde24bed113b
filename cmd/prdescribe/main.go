// prdescribe drafts a pull-request description and title for the current
// branch against a base branch.
//
// Usage:
//
//	prdescribe                      # diff against main, print the result
//	prdescribe -b develop -m 200    # other base, tighter truncation
//	prdescribe -p -o docs/PR.md     # also write the description to a file
//	prdescribe version
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/RobinCoderZhao/gitscribe/internal/scribe/action"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/cli"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/collector"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/git"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/pipeline"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/tui"
	"github.com/RobinCoderZhao/gitscribe/pkg/llm"
	"github.com/spf13/cobra"
)

type options struct {
	base       string
	maxLines   int
	publish    bool
	output     string
	note       string
	verbose    bool
	configPath string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.Report(os.Stderr, err))
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "prdescribe",
		Short:         "Draft a pull-request description and title with an LLM",
		Long:          "Diffs the current branch against a base branch and asks the configured model for a PR description, then for a title derived from it.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.base, "base", "b", "main", "base branch to diff against")
	cmd.Flags().IntVarP(&opts.maxLines, "max-lines", "m", collector.DefaultMaxLines, "maximum diff lines kept per file")
	cmd.Flags().BoolVarP(&opts.publish, "publish", "p", false, "write the description to the output file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file the description is published to (default PR_DESCRIPTION.md)")
	cmd.Flags().StringVarP(&opts.note, "context", "c", "", "short description of the change for the model")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default .gitscribe.yaml)")

	cmd.AddCommand(cli.VersionCmd("prdescribe"))
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	cfg, err := cli.LoadConfig(opts.configPath, opts.verbose)
	if err != nil {
		return err
	}

	// Flags given on the command line win over the config file.
	base := cfg.Diff.Base
	if cmd.Flags().Changed("base") {
		base = opts.base
	}
	maxLines := cfg.Diff.MaxLines
	if cmd.Flags().Changed("max-lines") {
		maxLines = opts.maxLines
	}
	output := cfg.Publish.Path
	if opts.output != "" {
		output = opts.output
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, err := git.OpenCurrent()
	if err != nil {
		return err
	}
	branchCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if branch, err := repo.CurrentBranch(branchCtx); err == nil {
		slog.Debug("describing branch", "branch", branch, "base", base)
		if branch == base {
			slog.Warn("current branch is the base branch, only uncommitted changes will be described", "branch", branch)
		}
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return err
	}
	defer client.Close()

	flow := &pipeline.PRFlow{
		Source: repo,
		Client: client,
		Collect: collector.Options{
			Base:     base,
			MaxLines: maxLines,
			Exclude:  cfg.Diff.Exclude,
		},
		Note:     opts.note,
		Readme:   cli.ReadmePath(repo.Dir(), cfg.Readme),
		Out:      os.Stdout,
		Progress: tui.NewSpinner(os.Stdout, tui.IsTTY()),
		Timeout:  cfg.Timeout,
	}
	if opts.publish {
		flow.Publisher = &action.Publisher{Path: output}
	}
	_, err = flow.Run(ctx)
	return err
}
