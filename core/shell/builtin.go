package shell

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pborman/getopt/v2"

	"github.com/gosh-shell/gosh/core/lookup"
)

// Builtin identifies a command implemented inside the shell's own process.
// The set is closed: adding a builtin means adding a constant here and a case
// to Dispatcher.Run.
type Builtin int

const (
	BuiltinEcho Builtin = iota
	BuiltinExit
	BuiltinType
	BuiltinPwd
	BuiltinCd
	BuiltinHistory
)

var builtinNames = map[string]Builtin{
	"echo":    BuiltinEcho,
	"exit":    BuiltinExit,
	"type":    BuiltinType,
	"pwd":     BuiltinPwd,
	"cd":      BuiltinCd,
	"history": BuiltinHistory,
}

func (b Builtin) String() string {
	for name, builtin := range builtinNames {
		if builtin == b {
			return name
		}
	}
	return fmt.Sprintf("builtin(%d)", int(b))
}

// LookupBuiltin reports whether name names a shell builtin.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinNames[name]
	return b, ok
}

// ExitError unwinds from the exit builtin through the executor and REPL up to
// main, which terminates the process with Code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// History exposes past input lines to the history builtin.
type History interface {
	Entries() []string
	Clear()
}

// Dispatcher executes builtins synchronously in the invoking process. It
// never forks; cd and exit have process-wide side effects.
type Dispatcher struct {
	Resolver lookup.Resolver
	History  History

	// Chdir, Getwd and HomeDir default to their os package equivalents.
	// Overridable for tests.
	Chdir   func(dir string) error
	Getwd   func() (string, error)
	HomeDir func() (string, error)
}

// NewDispatcher builds a dispatcher bound to the real process state.
func NewDispatcher(resolver lookup.Resolver, history History) *Dispatcher {
	return &Dispatcher{
		Resolver: resolver,
		History:  history,
		Chdir:    os.Chdir,
		Getwd:    os.Getwd,
		HomeDir:  os.UserHomeDir,
	}
}

// Run executes the builtin with args (not including the command name itself)
// and the given output streams. User-facing failures are written to stderr
// and swallowed; the only error returned is the *ExitError produced by exit.
func (d *Dispatcher) Run(b Builtin, args []string, stdout, stderr io.Writer) error {
	switch b {
	case BuiltinEcho:
		fmt.Fprintln(stdout, strings.Join(args, " "))

	case BuiltinExit:
		code := 0
		if len(args) > 0 {
			if parsed, err := strconv.Atoi(args[0]); err == nil {
				code = parsed
			}
		}
		return &ExitError{Code: code}

	case BuiltinType:
		d.runType(args, stdout)

	case BuiltinPwd:
		wd, err := d.Getwd()
		if err != nil {
			fmt.Fprintf(stderr, "pwd: %v\n", err)
			return nil
		}
		fmt.Fprintln(stdout, wd)

	case BuiltinCd:
		d.runCd(args, stderr)

	case BuiltinHistory:
		d.runHistory(args, stdout, stderr)
	}
	return nil
}

func (d *Dispatcher) runType(args []string, stdout io.Writer) {
	if len(args) == 0 {
		fmt.Fprintln(stdout, "type: missing operand")
		return
	}

	name := args[0]
	if _, ok := LookupBuiltin(name); ok {
		fmt.Fprintf(stdout, "%s is a shell builtin\n", name)
		return
	}
	if path, err := d.Resolver.Resolve(name); err == nil {
		fmt.Fprintf(stdout, "%s is %s\n", name, path)
		return
	}
	fmt.Fprintf(stdout, "%s: not found\n", name)
}

func (d *Dispatcher) runCd(args []string, stderr io.Writer) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	dir := target
	switch {
	case target == "" || target == "~":
		home, err := d.HomeDir()
		if err != nil {
			fmt.Fprintf(stderr, "cd: %v\n", err)
			return
		}
		dir = home
	case strings.HasPrefix(target, "~/"):
		home, err := d.HomeDir()
		if err != nil {
			fmt.Fprintf(stderr, "cd: %v\n", err)
			return
		}
		dir = filepath.Join(home, strings.TrimPrefix(target, "~/"))
	}

	if err := d.Chdir(dir); err != nil {
		// Strip the "chdir <dir>" prefix so the message reads like a shell's.
		reason := err.Error()
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			reason = pathErr.Err.Error()
		}
		fmt.Fprintf(stderr, "cd: %s: %v\n", target, reason)
	}
}

func (d *Dispatcher) runHistory(args []string, stdout, stderr io.Writer) {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(append([]string{"history"}, args...), nil); err != nil || *helpOpt {
		if err != nil {
			fmt.Fprintln(stderr, err)
		}
		fmt.Fprintln(stderr, "Display or manipulate the history list.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		opts.PrintOptions(stderr)
		return
	}

	if *clear {
		d.History.Clear()
		return
	}

	for i, line := range d.History.Entries() {
		fmt.Fprintf(stdout, "%4d  %s\n", i+1, line)
	}
}
