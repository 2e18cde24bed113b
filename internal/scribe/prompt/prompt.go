// Package prompt provides the LLM prompt templates for the gitscribe commands.
package prompt

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// Mode selects a template.
type Mode string

const (
	Commit        Mode = "commit"
	PRDescription Mode = "pr-description"
	PRTitle       Mode = "pr-title"
)

// Context is the data substituted into a template.
type Context struct {
	// Diff is the rendered diff (collector.Result.Text).
	Diff string
	// UserNote is free text the user typed about the change.
	UserNote string
	// Readme is the repository README, if one was read.
	Readme string
	// FilesUnderMaxLength and HeavyFiles feed the PR description lists.
	FilesUnderMaxLength []string
	HeavyFiles          []string
	// Description is the generated PR description, input of PRTitle.
	Description string
}

var templates = map[Mode]*template.Template{
	Commit:        template.Must(template.New("commit").Parse(commitTemplate)),
	PRDescription: template.Must(template.New("pr-description").Parse(prDescriptionTemplate)),
	PRTitle:       template.Must(template.New("pr-title").Parse(prTitleTemplate)),
}

// Build renders the template for mode with ctx.
func Build(mode Mode, ctx Context) (string, error) {
	tmpl, ok := templates[mode]
	if !ok {
		return "", fmt.Errorf("unknown prompt mode %q", mode)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", mode, err)
	}
	return buf.String(), nil
}

var hedgingRe = regexp.MustCompile(`(?i)\b(likely|probably)\b`)

// HedgingWords returns the hedging words found in generated text, lower-cased
// and deduplicated in order of appearance.
func HedgingWords(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range hedgingRe.FindAllString(text, -1) {
		w := strings.ToLower(m)
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

const commitTemplate = `To write conventional commits, follow the structure provided below:
<type>[optional scope]: <description>
[optional body]
[optional footer(s)]

Any responses that do not follow the above structure will be rejected. Follow the structure consistently and choose appropriate types to accurately describe the changes in the codebase.

Key points:
1. Use a specific ` + "`type`" + ` at the beginning of the commit message to categorize the change. Recommended types:
   - ` + "`fix`" + `: for bug fixes
   - ` + "`feat`" + `: for introducing new features
   Other types: ` + "`build`, `chore`, `docs`, `style`, `refactor`, `perf`, `test`" + `, etc.
2. Optionally, include a ` + "`scope`" + ` in parentheses after the type to provide additional context.
3. Write a short and concise ` + "`description`" + ` of the code changes.
4. Optionally, include a more detailed ` + "`body`" + ` section to provide additional context about the changes.
5. Optionally, include one or more ` + "`footer`" + ` sections below the body, containing references, issues addressed, or breaking changes.

Rules:
- Use a colon and space after the type/scope prefix.
- Separate the body from the description and each footer with a blank line.
- Use hyphens (` + "`-`" + `) in the footers' tokens (except for ` + "`BREAKING CHANGE`" + `), and separate them from values with a colon (` + "`:`" + `) or a hash (` + "`#`" + `) character.

Pure example, never use this in the output:
<Example>
feat: update terminology in auto-commit script

- Changes made: replaced the term "retreats" with "stays" in the user instructions for commit messages
Implementation reason: the terminology reflects the application's focus on booking remote work stays rather than retreats.
- File changed: scripts/auto-commit.ts
</Example>

Instructions:
Using the conventional commits system, write a git commit message based on the git diff below.
{{- if .UserNote}}
The user has added some context about the changes they have made: {{.UserNote}}
{{- end}}
{{- if .Readme}}
Here is some context about this project from its README:
{{.Readme}}
{{- end}}
In the conventional commit body, include a bullet list of files changed after a simple description of what has changed, been deleted, or been added. Do not include the code.

Diff begins:

{{.Diff}}
Diff ends.

Remember:
- Do not include "Commit Message:" in the commit message.
- Take a guess as to why this code is being implemented (considering the user-provided context), and label it: Implementation reason:
- Do not use "likely" or "probably" in the commit message or the implementation reason. Write authoritatively. If it is inaccurate the user will amend it.

Important:
- The output will be piped directly into the commit message, so skip prose, introductions, and postscripts.
- Do not wrap the output in code fences or prefix the output with "Commit message:".
`

const prDescriptionTemplate = `You are an expert developer and technical writer. Based on the following git diff, generate a concise and informative pull request description. A good pull request documents the changes in the repository, with a reference to internal decisions in each file. Any new dependencies are referenced and explained in detail, especially at their implementation site.
{{- if .UserNote}}

The author describes the change as follows: {{.UserNote}}
{{- end}}
{{- if .Readme}}

The repository has a README file. It reads as follows:
{{.Readme}}
{{- end}}

Include a brief summary of the changes, their purpose, and any potential impact. Note additional libraries, concepts, or patterns implemented.
If the diff is truncated, mention that in your description.
When talking about changes to, or additions of, a file, reference the file name and relative path from the root directory in backticks (very important).
Don't speak in generalities or use "like". Be concise, specific and comprehensive.

Go into detail about the implementation of new dependencies, new features, or new components.

If a file structure is changed, include the new file structure in the description, using an "sh" code block to draw a tree.

Output a list of directories or files that could be ignored.

At the end of the description, include a list of files with large changes (more than 100 lines).

There must be a specific or general reference to every file in the diff.

Finally output a tree with + and - and relative file paths to show how the structure has changed.
---
You can use the lists here to structure your thoughts:
<FilesChangedUnderMaxFileLength>
{{range .FilesUnderMaxLength}}{{.}}
{{end}}</FilesChangedUnderMaxFileLength>

<FilesWithLargeChanges>
{{range .HeavyFiles}}{{.}}
{{end}}</FilesWithLargeChanges>

<GitDiff>
{{.Diff}}</GitDiff>

Generate a PR description:
`

const prTitleTemplate = `Based on the following PR description, generate a concise and informative title for the pull request. Output only the title, without quotes or a "Title:" prefix.
---
{{.Description}}
---
Generate a PR title:
`
