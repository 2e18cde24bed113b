// Package collector gathers the per-file diffs a prompt is built from.
//
// It lists the changed paths, drops noise such as lockfiles and build output,
// truncates each file's diff to a line budget and classifies the files by
// size. A git failure aborts the whole collection.
package collector

import (
	"context"
	"log/slog"
	"strings"

	"github.com/RobinCoderZhao/gitscribe/internal/scribe/git"
	"github.com/RobinCoderZhao/gitscribe/pkg/differ"
	"github.com/cockroachdb/errors"
)

const (
	// DefaultMaxLines is the per-file line budget when none is configured.
	DefaultMaxLines = 400
	// HeavyThreshold is the number of changed lines above which a file is
	// reported as having large changes.
	HeavyThreshold = 100
)

// Source lists and diffs changed files. *git.Repo implements it.
type Source interface {
	ChangedFiles(ctx context.Context, base string) ([]string, error)
	FileDiff(ctx context.Context, base, path string) (string, error)
}

var _ Source = (*git.Repo)(nil)

// Options configures a collection.
type Options struct {
	// Base is a revision to compare against, or git.Staged.
	Base     string
	MaxLines int
	Exclude  []string
}

// DiffRecord is the diff of one file.
type DiffRecord struct {
	FilePath string
	// LineCount is the length of the untruncated diff.
	LineCount int
	// Stats counts added and removed lines of the untruncated diff.
	Stats     differ.Stats
	Truncated bool
	// Content holds at most MaxLines diff lines, followed by
	// differ.TruncationSentinel when Truncated.
	Content []string
}

// Text returns the record's content joined by newlines.
func (r DiffRecord) Text() string {
	return strings.Join(r.Content, "\n")
}

// Heavy reports whether the file has more than HeavyThreshold changed lines.
func (r DiffRecord) Heavy() bool {
	return r.Stats.Changed() > HeavyThreshold
}

// Classification partitions the collected paths by the line budget.
type Classification struct {
	UnderMaxLength []string
	Large          []string
}

// Result is the output of Collect.
type Result struct {
	Base           string
	MaxLines       int
	Records        []DiffRecord
	Classification Classification
}

// Empty reports whether no file survived filtering.
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// Truncated reports whether any record was cut short.
func (r *Result) Truncated() bool {
	for _, rec := range r.Records {
		if rec.Truncated {
			return true
		}
	}
	return false
}

// Paths returns the collected paths in diff order.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.FilePath
	}
	return out
}

// HeavyFiles returns the paths with more than HeavyThreshold changed lines.
func (r *Result) HeavyFiles() []string {
	var out []string
	for _, rec := range r.Records {
		if rec.Heavy() {
			out = append(out, rec.FilePath)
		}
	}
	return out
}

// Text renders every record as a "File: <path>" header, its diff lines and a
// blank separator line.
func (r *Result) Text() string {
	var sb strings.Builder
	for _, rec := range r.Records {
		sb.WriteString("File: ")
		sb.WriteString(rec.FilePath)
		sb.WriteString("\n")
		if len(rec.Content) > 0 {
			sb.WriteString(rec.Text())
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Collect lists the files changed against opts.Base, filters them and builds
// one DiffRecord per surviving file.
func Collect(ctx context.Context, src Source, opts Options) (*Result, error) {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}
	if opts.Base == "" {
		opts.Base = git.Staged
	}

	files, err := src.ChangedFiles(ctx, opts.Base)
	if err != nil {
		return nil, errors.Wrap(err, "list changed files")
	}
	kept := Filter(files, opts.Exclude)
	slog.Debug("collected changed files", "base", opts.Base, "changed", len(files), "kept", len(kept))

	res := &Result{Base: opts.Base, MaxLines: opts.MaxLines}
	for _, path := range kept {
		out, err := src.FileDiff(ctx, opts.Base, path)
		if err != nil {
			return nil, errors.Wrapf(err, "diff %s", path)
		}
		rec := buildRecord(path, out, opts.MaxLines)
		res.Records = append(res.Records, rec)
		if rec.LineCount > opts.MaxLines {
			res.Classification.Large = append(res.Classification.Large, path)
		} else {
			res.Classification.UnderMaxLength = append(res.Classification.UnderMaxLength, path)
		}
	}
	return res, nil
}

func buildRecord(path, diff string, maxLines int) DiffRecord {
	lines := differ.SplitLines(diff)
	content, truncated := differ.Truncate(lines, maxLines)
	if truncated {
		slog.Debug("truncated diff", "file", path, "lines", len(lines), "max", maxLines)
	}
	return DiffRecord{
		FilePath:  path,
		LineCount: len(lines),
		Stats:     differ.Count(lines),
		Truncated: truncated,
		Content:   content,
	}
}
