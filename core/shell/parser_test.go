package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name     string
		words    []string
		expected *Pipeline
	}{
		{
			name:  "single command",
			words: []string{"ls", "-l", "/tmp"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "ls", Args: []string{"-l", "/tmp"}}},
			},
		},
		{
			name:  "two stages",
			words: []string{"cat", "notes.txt", "|", "wc", "-l"},
			expected: &Pipeline{
				Stages: []Stage{
					{Name: "cat", Args: []string{"notes.txt"}},
					{Name: "wc", Args: []string{"-l"}},
				},
			},
		},
		{
			name:  "three stages preserve order",
			words: []string{"cmd1", "|", "cmd2", "|", "cmd3"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "cmd1"}, {Name: "cmd2"}, {Name: "cmd3"}},
			},
		},
		{
			name:  "stdout overwrite",
			words: []string{"echo", "hi", ">", "out.txt"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "echo", Args: []string{"hi"}}},
				Redir:  &Redirection{Mode: RedirStdout, Target: "out.txt"},
			},
		},
		{
			name:  "stdout overwrite explicit fd",
			words: []string{"echo", "hi", "1>", "out.txt"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "echo", Args: []string{"hi"}}},
				Redir:  &Redirection{Mode: RedirStdout, Target: "out.txt"},
			},
		},
		{
			name:  "stdout append",
			words: []string{"echo", "hi", ">>", "out.txt"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "echo", Args: []string{"hi"}}},
				Redir:  &Redirection{Mode: RedirStdoutAppend, Target: "out.txt"},
			},
		},
		{
			name:  "stderr overwrite",
			words: []string{"cmd", "2>", "err.txt"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "cmd"}},
				Redir:  &Redirection{Mode: RedirStderr, Target: "err.txt"},
			},
		},
		{
			name:  "stderr append",
			words: []string{"cmd", "2>>", "err.txt"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "cmd"}},
				Redir:  &Redirection{Mode: RedirStderrAppend, Target: "err.txt"},
			},
		},
		{
			name:  "redirection only on final stage is retained",
			words: []string{"cmd1", ">", "mid.txt", "|", "cmd2", ">", "last.txt"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "cmd1"}, {Name: "cmd2"}},
				Redir:  &Redirection{Mode: RedirStdout, Target: "last.txt"},
			},
		},
		{
			name:  "intermediate redirection terminates args but is discarded",
			words: []string{"cmd1", "a", ">", "mid.txt", "b", "|", "cmd2"},
			expected: &Pipeline{
				Stages: []Stage{
					{Name: "cmd1", Args: []string{"a"}},
					{Name: "cmd2"},
				},
			},
		},
		{
			name:  "words after redirection target are ignored",
			words: []string{"echo", "a", ">", "out.txt", "b", "c"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "echo", Args: []string{"a"}}},
				Redir:  &Redirection{Mode: RedirStdout, Target: "out.txt"},
			},
		},
		{
			name:  "dangling operator is dropped",
			words: []string{"echo", "hi", ">"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "echo", Args: []string{"hi"}}},
			},
		},
		{
			name:  "empty groups are dropped",
			words: []string{"|", "cmd1", "|", "|", "cmd2", "|"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "cmd1"}, {Name: "cmd2"}},
			},
		},
		{
			name:  "operator-looking words are arguments when quoted upstream",
			words: []string{"grep", "a|b"},
			expected: &Pipeline{
				Stages: []Stage{{Name: "grep", Args: []string{"a|b"}}},
			},
		},
	}

	parser := &Parser{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pipeline, err := parser.Parse(tc.words)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, pipeline)
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	parser := &Parser{}

	pipeline, err := parser.Parse(nil)
	assert.NoError(t, err)
	assert.Empty(t, pipeline.Stages)
	assert.Nil(t, pipeline.Redir)
}

func TestParseStrict(t *testing.T) {
	parser := &Parser{Strict: true}

	cases := []struct {
		name  string
		words []string
	}{
		{"leading pipe", []string{"|", "cmd"}},
		{"trailing pipe", []string{"cmd", "|"}},
		{"doubled pipe", []string{"cmd1", "|", "|", "cmd2"}},
		{"dangling redirection", []string{"echo", "hi", ">"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.Parse(tc.words)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}

	// A well-formed pipeline still parses.
	pipeline, err := parser.Parse([]string{"cmd1", "|", "cmd2"})
	assert.NoError(t, err)
	assert.Len(t, pipeline.Stages, 2)
}

// Tokenize-then-parse covers the quoting contract end to end.
func TestSplitAndParse(t *testing.T) {
	words, err := Split(`echo "a b" 'c|d' 1>out.txt`)
	assert.NoError(t, err)

	pipeline, err := (&Parser{}).Parse(words)
	assert.NoError(t, err)
	assert.Equal(t, &Pipeline{
		Stages: []Stage{{Name: "echo", Args: []string{"a b", "c|d"}}},
		Redir:  &Redirection{Mode: RedirStdout, Target: "out.txt"},
	}, pipeline)
}
