package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/RobinCoderZhao/gitscribe/internal/scribe/action"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/collector"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/prompt"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/tui"
	"github.com/RobinCoderZhao/gitscribe/pkg/llm"
)

// PublishTarget stores the generated description. *action.Publisher
// implements it.
type PublishTarget interface {
	Publish(text string) error
}

var _ PublishTarget = (*action.Publisher)(nil)

// PRFlow drafts a pull-request description against a base branch, then a
// title from that description.
type PRFlow struct {
	Source  collector.Source
	Client  llm.Client
	Collect collector.Options
	Note    string
	Readme  string
	// Publisher is optional; nil only prints the result.
	Publisher PublishTarget
	Out       io.Writer
	Progress  Progress
	// Timeout bounds each git or model step separately.
	Timeout time.Duration

	track tracker
}

// PRResult is the generated pull-request text.
type PRResult struct {
	Title       string
	Description string
	Diff        *collector.Result
}

// States returns the states the last Run passed through.
func (f *PRFlow) States() []State {
	return append([]State(nil), f.track.states...)
}

// Run executes the flow. It returns a nil result when there is nothing to
// describe.
func (f *PRFlow) Run(ctx context.Context) (*PRResult, error) {
	f.track = tracker{}
	f.track.enter(Idle)
	out := f.Out
	if out == nil {
		out = os.Stdout
	}
	progress := f.Progress
	if progress == nil {
		progress = noProgress{}
	}

	res, err := collect(ctx, f.Timeout, nil, f.Source, f.Collect)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		fmt.Fprintln(out, "No changes detected.")
		f.track.enter(NothingToDo)
		return nil, nil
	}
	f.track.enter(DiffCollected)
	printFiles(out, res)
	if res.Truncated() {
		fmt.Fprintln(out, tui.Warn.Render(fmt.Sprintf("Some diffs exceed %d lines and were truncated: %s",
			res.MaxLines, strings.Join(res.Classification.Large, ", "))))
	}

	descPrompt, err := prompt.Build(prompt.PRDescription, prompt.Context{
		Diff:                res.Text(),
		UserNote:            f.Note,
		Readme:              ReadReadme(f.Readme),
		FilesUnderMaxLength: res.Classification.UnderMaxLength,
		HeavyFiles:          res.HeavyFiles(),
	})
	if err != nil {
		return nil, err
	}
	f.track.enter(PromptBuilt)

	descResp, err := generate(ctx, f.Timeout, f.Client, progress, "Generating PR description...", descPrompt)
	if err != nil {
		return nil, err
	}

	titlePrompt, err := prompt.Build(prompt.PRTitle, prompt.Context{Description: descResp.Content})
	if err != nil {
		return nil, err
	}
	titleResp, err := generate(ctx, f.Timeout, f.Client, progress, "Generating PR title...", titlePrompt)
	if err != nil {
		return nil, err
	}
	f.track.enter(TextGenerated)

	result := &PRResult{
		Title:       strings.Trim(titleResp.Content, "\"'` "),
		Description: descResp.Content,
		Diff:        res,
	}

	printSection(out, "Generated PR Description:", result.Description)
	printSection(out, "Generated PR Title:", result.Title)
	printUsage(out, &llm.Response{
		TokensIn:  descResp.TokensIn + titleResp.TokensIn,
		TokensOut: descResp.TokensOut + titleResp.TokensOut,
		Cost:      descResp.Cost + titleResp.Cost,
	})

	if f.Publisher != nil {
		if err := f.Publisher.Publish(result.Description); err != nil {
			return nil, err
		}
		if p, ok := f.Publisher.(*action.Publisher); ok {
			fmt.Fprintln(out, tui.Success.Render("PR description written to "+p.Path))
		}
		f.track.enter(Published)
	}
	return result, nil
}
