package shell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/afero"

	"github.com/gosh-shell/gosh/core/lookup"
)

// Executor turns a Pipeline into synchronous builtin calls and concurrently
// running child processes, chaining stdout of stage i to stdin of stage i+1.
// A single control thread drives the spawn loop; the only blocking points are
// the per-child waits at the end.
type Executor struct {
	Dispatcher *Dispatcher
	Resolver   lookup.Resolver

	// Fs opens redirection targets.
	Fs afero.Fs

	// The shell's own standard streams, used wherever no pipe or redirection
	// takes precedence.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type flusher interface {
	Flush() error
}

// Execute runs every stage of the pipeline, waits for all spawned stages in
// spawn order and flushes the shell's stdout before returning. A resolution
// or spawn failure aborts the remaining unlaunched stages but already-spawned
// ones are still drained. The only non-nil return values are the *ExitError
// raised by the exit builtin and redirection open failures, which abort the
// pipeline before anything is spawned.
func (e *Executor) Execute(p *Pipeline) error {
	defer e.flush()

	if len(p.Stages) == 0 {
		return nil
	}

	var redirFile afero.File
	if p.Redir != nil {
		fd, err := e.Fs.OpenFile(p.Redir.Target, p.Redir.Mode.openFlags(), 0644)
		if err != nil {
			return err
		}
		redirFile = fd
		defer fd.Close()
	}

	var (
		spawned []*exec.Cmd
		exitErr error

		// stdin carries the current stage's input: the shell's stdin, the
		// previous stage's pipe read end, or a materialized builtin buffer.
		stdin io.Reader = e.Stdin

		// pending is the parent's copy of the read end feeding the next
		// stage. It must be closed once ownership transfers (or on abort) so
		// no writer blocks on a pipe nobody will ever drain.
		pending *os.File
	)

	closePending := func() {
		if pending != nil {
			pending.Close()
			pending = nil
		}
	}
	defer closePending()

	last := len(p.Stages) - 1
	for i, stage := range p.Stages {
		lastStage := i == last

		stdout := e.Stdout
		stderr := e.Stderr
		if lastStage && redirFile != nil {
			if p.Redir.Mode.Stderr() {
				stderr = redirFile
			} else {
				stdout = redirFile
			}
		}

		if builtin, ok := LookupBuiltin(stage.Name); ok {
			// Builtins run synchronously and never join the spawn/wait
			// bookkeeping. A non-final builtin's output is materialized into
			// the next stage's stdin.
			var pipe *bytes.Buffer
			if !lastStage {
				pipe = &bytes.Buffer{}
				stdout = pipe
			}
			err := e.Dispatcher.Run(builtin, stage.Args, stdout, stderr)
			closePending()
			if err != nil {
				exitErr = err
				break
			}
			if pipe != nil {
				stdin = pipe
			}
			continue
		}

		path, err := e.Resolver.Resolve(stage.Name)
		if err != nil {
			fmt.Fprintf(e.Stderr, "%s: command not found\n", stage.Name)
			break
		}

		cmd := &exec.Cmd{
			Path:   path,
			Args:   append([]string{stage.Name}, stage.Args...),
			Stdin:  stdin,
			Stdout: stdout,
			Stderr: stderr,
		}

		var writeEnd, readEnd *os.File
		if !lastStage {
			readEnd, writeEnd, err = os.Pipe()
			if err != nil {
				fmt.Fprintf(e.Stderr, "%s: %v\n", stage.Name, err)
				break
			}
			cmd.Stdout = writeEnd
		}

		if err := cmd.Start(); err != nil {
			fmt.Fprintf(e.Stderr, "%s: %v\n", stage.Name, err)
			if writeEnd != nil {
				writeEnd.Close()
				readEnd.Close()
			}
			break
		}
		spawned = append(spawned, cmd)

		// The child holds its own copies now; release the parent's write end
		// immediately and the read end that fed this stage's stdin.
		if writeEnd != nil {
			writeEnd.Close()
		}
		closePending()
		pending = readEnd
		stdin = readEnd
	}

	// Drop the parent's last read end before waiting: an aborted pipeline
	// must not leave a spawned writer blocked forever.
	closePending()

	for _, cmd := range spawned {
		if err := cmd.Wait(); err != nil {
			var exitStatus *exec.ExitError
			if !errors.As(err, &exitStatus) {
				fmt.Fprintf(e.Stderr, "%s: %v\n", cmd.Args[0], err)
			}
			// Non-zero child exits are ordinary shell business, not
			// diagnostics.
		}
	}

	return exitErr
}

func (e *Executor) flush() {
	if f, ok := e.Stdout.(flusher); ok {
		f.Flush()
	}
}
