// Package pipeline runs the gitscribe stages in order: collect the diff,
// build the prompt, generate text, act on it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/RobinCoderZhao/gitscribe/internal/scribe/collector"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/tui"
	"github.com/RobinCoderZhao/gitscribe/pkg/llm"
	"github.com/cockroachdb/errors"
)

// State is a step of a run.
type State int

const (
	Idle State = iota
	DiffCollected
	PromptBuilt
	TextGenerated
	AwaitingConfirmation
	Committed
	Aborted
	// NothingToDo ends a run whose diff was empty.
	NothingToDo
	// Published ends a PR run.
	Published
)

var stateNames = map[State]string{
	Idle:                 "idle",
	DiffCollected:        "diff-collected",
	PromptBuilt:          "prompt-built",
	TextGenerated:        "text-generated",
	AwaitingConfirmation: "awaiting-confirmation",
	Committed:            "committed",
	Aborted:              "aborted",
	NothingToDo:          "nothing-to-do",
	Published:            "published",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Progress reports that a slow step is running. *tui.Spinner implements it.
type Progress interface {
	Start(message string)
	Stop() time.Duration
}

var _ Progress = (*tui.Spinner)(nil)

type noProgress struct{}

func (noProgress) Start(string)        {}
func (noProgress) Stop() time.Duration { return 0 }

// tracker records the state transitions of a run.
type tracker struct {
	states []State
}

func (t *tracker) enter(s State) {
	t.states = append(t.states, s)
	slog.Debug("pipeline state", "state", s.String())
}

func (t *tracker) current() State {
	if len(t.states) == 0 {
		return Idle
	}
	return t.states[len(t.states)-1]
}

// ReadReadme returns the content of path. A missing or unreadable README is
// not an error: it is logged and the prompt goes without it.
func ReadReadme(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("README not found, continuing without it", "path", path)
		} else {
			slog.Warn("could not read README, continuing without it", "path", path, "error", err)
		}
		return ""
	}
	slog.Debug("README loaded", "path", path, "bytes", len(data))
	return string(data)
}

// bounded limits one git or model step to d. Waits on the user are never
// bounded. A zero d leaves ctx as is.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// collect stages (when stager is set) and collects the diff within one
// timeout.
func collect(ctx context.Context, d time.Duration, stager Stager, src collector.Source, opts collector.Options) (*collector.Result, error) {
	ctx, cancel := bounded(ctx, d)
	defer cancel()
	if stager != nil {
		if err := stager.AddAll(ctx); err != nil {
			return nil, errors.Wrap(err, "stage changes")
		}
	}
	res, err := collector.Collect(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	slog.Debug("diff collected", "files", res.Paths(), "truncated", res.Truncated())
	return res, nil
}

// generate runs one model call behind the progress indicator.
func generate(ctx context.Context, d time.Duration, client llm.Client, progress Progress, label, text string) (*llm.Response, error) {
	ctx, cancel := bounded(ctx, d)
	defer cancel()
	slog.Debug("sending prompt", "label", label, "chars", len(text), "provider", client.Provider())
	progress.Start(label)
	resp, err := llm.Text(ctx, client, text, llm.DefaultSystem)
	elapsed := progress.Stop()
	if err != nil {
		return nil, err
	}
	slog.Debug("generation finished", "label", label, "elapsed", elapsed,
		"tokens_in", resp.TokensIn, "tokens_out", resp.TokensOut)
	return resp, nil
}

func printSection(out io.Writer, title, body string) {
	fmt.Fprintf(out, "\n%s\n\n%s\n", tui.Heading.Render(title), body)
}

func printUsage(out io.Writer, resp *llm.Response) {
	fmt.Fprintln(out, tui.Muted.Render(fmt.Sprintf("Tokens: %d in / %d out | Cost: $%.4f",
		resp.TokensIn, resp.TokensOut, resp.Cost)))
}

func printFiles(out io.Writer, res *collector.Result) {
	fmt.Fprintf(out, "%s\n", tui.Heading.Render(fmt.Sprintf("Changed files (%d):", len(res.Records))))
	for _, rec := range res.Records {
		line := fmt.Sprintf("   %s (%s)", rec.FilePath, rec.Stats.Summary())
		if rec.Truncated {
			line += " " + tui.Warn.Render("[truncated]")
		}
		fmt.Fprintln(out, line)
	}
	if heavy := res.HeavyFiles(); len(heavy) > 0 {
		fmt.Fprintln(out, tui.Muted.Render(fmt.Sprintf("Files with more than %d changed lines: %s",
			collector.HeavyThreshold, strings.Join(heavy, ", "))))
	}
}
