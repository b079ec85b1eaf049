package shell

import (
	"errors"
	"fmt"
	"os"
)

// ErrSyntax reports a malformed pipeline under strict parsing.
var ErrSyntax = errors.New("syntax error")

// RedirMode names the stream and open mode of a redirection.
type RedirMode int

const (
	// RedirStdout truncates the target and binds it to stdout (">", "1>").
	RedirStdout RedirMode = iota
	// RedirStdoutAppend appends to the target from stdout (">>", "1>>").
	RedirStdoutAppend
	// RedirStderr truncates the target and binds it to stderr ("2>").
	RedirStderr
	// RedirStderrAppend appends to the target from stderr ("2>>").
	RedirStderrAppend
)

var redirOperators = map[string]RedirMode{
	">":   RedirStdout,
	"1>":  RedirStdout,
	">>":  RedirStdoutAppend,
	"1>>": RedirStdoutAppend,
	"2>":  RedirStderr,
	"2>>": RedirStderrAppend,
}

// Stderr reports whether the mode applies to the stderr stream.
func (m RedirMode) Stderr() bool {
	return m == RedirStderr || m == RedirStderrAppend
}

// Append reports whether the target is opened for appending rather than
// truncated.
func (m RedirMode) Append() bool {
	return m == RedirStdoutAppend || m == RedirStderrAppend
}

func (m RedirMode) openFlags() int {
	flags := os.O_WRONLY | os.O_CREATE
	if m.Append() {
		return flags | os.O_APPEND
	}
	return flags | os.O_TRUNC
}

// Stage is one command of a pipeline, immutable once parsed.
type Stage struct {
	Name string
	Args []string
}

// Redirection binds the final stage's stdout or stderr to a file.
type Redirection struct {
	Mode   RedirMode
	Target string
}

// Pipeline is the execution plan for one input line: at least one stage for
// non-empty input, plus at most one trailing redirection. A Pipeline never
// outlives the execution of the line it was parsed from.
type Pipeline struct {
	Stages []Stage
	Redir  *Redirection
}

// Parser groups words into pipeline stages at "|" boundaries and extracts an
// optional trailing redirection from the final stage.
type Parser struct {
	// Strict rejects empty pipeline stages and redirection operators with no
	// target. The default mirrors minimal shells and absorbs both silently.
	Strict bool
}

// Parse builds the execution plan for one line of words. Stages appear in
// left-to-right order; only a redirection trailing the final stage is
// retained. Earlier redirections terminate argument collection but are
// discarded since a pipe owns an intermediate stage's stdout.
func (p *Parser) Parse(words []string) (*Pipeline, error) {
	var groups [][]string
	current := []string{}
	for _, w := range words {
		if w == "|" {
			groups = append(groups, current)
			current = []string{}
			continue
		}
		current = append(current, w)
	}
	groups = append(groups, current)

	out := &Pipeline{}
	for _, group := range groups {
		if len(group) == 0 {
			if p.Strict && len(groups) > 1 {
				return nil, fmt.Errorf("%w near unexpected token `|'", ErrSyntax)
			}
			continue
		}

		stage := Stage{Name: group[0]}
		var redir *Redirection
		for i := 1; i < len(group); i++ {
			mode, ok := redirOperators[group[i]]
			if !ok {
				stage.Args = append(stage.Args, group[i])
				continue
			}
			if i+1 >= len(group) {
				if p.Strict {
					return nil, fmt.Errorf("%w: %q requires a target", ErrSyntax, group[i])
				}
				break
			}
			redir = &Redirection{Mode: mode, Target: group[i+1]}
			// Words after the target are ignored.
			break
		}

		out.Stages = append(out.Stages, stage)
		// Assigned per retained stage so the value left standing belongs to
		// the final stage.
		out.Redir = redir
	}
	return out, nil
}
