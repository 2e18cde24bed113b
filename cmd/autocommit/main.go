// autocommit drafts a conventional commit message for the working tree and
// commits with it.
//
// Usage:
//
//	autocommit              # stage, draft, confirm, commit
//	autocommit -s -n        # no context question, no confirmation
//	autocommit --dry-run    # print the git command instead of committing
//	autocommit version
package main

import (
	"context"
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
	skipContext bool
	noVerify    bool
	dryRun      bool
	verbose     bool
	configPath  string
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
		Use:           "autocommit",
		Short:         "Draft a conventional commit message with an LLM and commit",
		Long:          "Stages all changes, sends the diff to the configured model and commits with the generated conventional commit message after confirmation.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.skipContext, "skip-context", "s", false, "do not ask for a description of the changes")
	cmd.Flags().BoolVarP(&opts.noVerify, "no-verify", "n", false, "commit without asking for confirmation")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the commit command instead of running it")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default .gitscribe.yaml)")

	cmd.AddCommand(cli.VersionCmd("autocommit"))
	return cmd
}

func run(parent context.Context, opts options) error {
	cfg, err := cli.LoadConfig(opts.configPath, opts.verbose)
	if err != nil {
		return err
	}

	ctx := parent
	if ctx == nil {
		ctx = context.Background()
	}

	repo, err := git.OpenCurrent()
	if err != nil {
		return err
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return err
	}
	defer client.Close()

	prompter := action.NewPrompter(os.Stdin, os.Stdout)
	var notes action.NoteReader = action.AskNote{Prompter: prompter}
	if opts.skipContext {
		notes = action.FixedNote("")
	}
	var confirmer action.Confirmer = prompter
	if opts.noVerify {
		confirmer = action.NoConfirm{}
	}

	flow := &pipeline.CommitFlow{
		Stager:    repo,
		Source:    repo,
		Client:    client,
		Notes:     notes,
		Confirmer: confirmer,
		Committer: &action.Committer{Runner: repo, DryRun: opts.dryRun, Out: os.Stdout},
		Collect: collector.Options{
			Base:     git.Staged,
			MaxLines: cfg.Diff.MaxLines,
			Exclude:  cfg.Diff.Exclude,
		},
		Readme:   cli.ReadmePath(repo.Dir(), cfg.Readme),
		Out:      os.Stdout,
		Progress: tui.NewSpinner(os.Stdout, tui.IsTTY()),
		Timeout:  cfg.Timeout,
	}
	_, err = flow.Run(ctx)
	return err
}
