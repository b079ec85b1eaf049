// Package shell implements the command-execution core of the interactive
// shell: word splitting, pipeline parsing, builtin dispatch and pipeline
// execution.
package shell

import (
	"github.com/anmitsu/go-shlex"
)

// Split breaks a raw input line into words. Single-quoted text is taken
// literally, double quotes allow backslash escaping of '"' and '\', and an
// unquoted backslash escapes the next character. An unterminated quote is an
// error.
//
// A "|" is a pipeline delimiter only when it stands alone as a word; quoted
// pipes never split the pipeline.
func Split(line string) ([]string, error) {
	return shlex.Split(line, true)
}
