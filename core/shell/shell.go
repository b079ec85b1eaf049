package shell

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/gosh-shell/gosh/core/auditlog"
	"github.com/gosh-shell/gosh/core/config"
	"github.com/gosh-shell/gosh/core/lookup"
)

const (
	EnvHome     = "HOME"
	EnvUser     = "USER"
	EnvHostname = "HOSTNAME"

	// DefaultPrompt is used when the configuration leaves the prompt empty.
	DefaultPrompt = "$ "
)

var (
	promptUserColor = color.New(color.FgGreen, color.Bold)
	promptPwdColor  = color.New(color.FgBlue, color.Bold)
)

// Shell drives the read-execute-wait cycle. Exactly one control thread owns
// the process-wide mutable state (working directory, standard streams), so no
// locking guards it; concurrency exists only at the OS-process level inside a
// single pipeline.
type Shell struct {
	Config   *config.Configuration
	Readline *readline.Instance
	Parser   *Parser
	Executor *Executor

	// Audit, when set, records each executed line. Never fatal.
	Audit *auditlog.Recorder

	history     []string
	auditBroken bool
}

var _ History = (*Shell)(nil)

// New builds an interactive shell bound to the given streams.
func New(cfg *config.Configuration, stdin io.Reader, stdout, stderr io.Writer) (*Shell, error) {
	rlCfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(stdin),
		Stdout: stdout,
		Stderr: stderr,
	}
	if err := rlCfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return nil, err
	}

	sh := &Shell{
		Config:   cfg,
		Readline: rl,
		Parser:   &Parser{Strict: cfg.StrictSyntax},
	}

	resolver := lookup.NewPathResolver()
	sh.Executor = &Executor{
		Dispatcher: NewDispatcher(resolver, sh),
		Resolver:   resolver,
		Fs:         afero.NewOsFs(),
		Stdin:      stdin,
		Stdout:     stdout,
		Stderr:     stderr,
	}

	return sh, nil
}

// Entries returns the session history, oldest first.
func (s *Shell) Entries() []string {
	return s.history
}

// Clear drops the session history.
func (s *Shell) Clear() {
	s.history = nil
	if s.Readline != nil {
		s.Readline.Operation.ResetHistory()
	}
}

// Run reads and executes lines until end of input or the exit builtin. The
// returned value is the process exit code.
func (s *Shell) Run() int {
	for {
		s.Readline.SetPrompt(s.prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return 0 // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears the line.
			continue

		case err != nil:
			log.Printf("readline: %v", err)
			continue

		case len(strings.TrimSpace(line)) == 0:
			continue
		}

		if code, done := s.RunLine(line); done {
			return code
		}
	}
}

// RunLine executes a single raw input line. done reports that the shell
// should terminate with code (the exit builtin ran).
func (s *Shell) RunLine(line string) (code int, done bool) {
	s.remember(line)

	words, err := Split(line)
	if err != nil {
		fmt.Fprintln(s.Executor.Stderr, "gosh: syntax error: unexpected end of line")
		return 0, false
	}

	pipeline, err := s.Parser.Parse(words)
	if err != nil {
		fmt.Fprintf(s.Executor.Stderr, "gosh: %v\n", err)
		return 0, false
	}
	if len(pipeline.Stages) == 0 {
		return 0, false
	}

	s.audit(line, pipeline)

	if err := s.Executor.Execute(pipeline); err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			return exit.Code, true
		}
		fmt.Fprintf(s.Executor.Stderr, "gosh: %v\n", err)
	}
	return 0, false
}

func (s *Shell) remember(line string) {
	s.history = append(s.history, line)
	if limit := s.Config.HistoryLimit; limit > 0 && len(s.history) > limit {
		s.history = s.history[len(s.history)-limit:]
	}
}

func (s *Shell) audit(line string, p *Pipeline) {
	if s.Audit == nil {
		return
	}
	commands := make([]string, 0, len(p.Stages))
	for _, stage := range p.Stages {
		commands = append(commands, stage.Name)
	}
	if err := s.Audit.Record(line, commands); err != nil && !s.auditBroken {
		// Report once, keep the session alive.
		s.auditBroken = true
		fmt.Fprintf(s.Executor.Stderr, "gosh: audit log: %v\n", err)
	}
}

// prompt expands the PS1-style template from the configuration: \u user,
// \h host, \w working directory (home shown as ~), \$ prompt character.
func (s *Shell) prompt() string {
	prompt := s.Config.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if !strings.ContainsRune(prompt, '\\') {
		return prompt
	}

	colored := s.isTerminal()

	prompt = strings.ReplaceAll(prompt, `\u`, colorize(promptUserColor, os.Getenv(EnvUser), colored))
	host, _ := os.Hostname()
	prompt = strings.ReplaceAll(prompt, `\h`, host)

	pwd, _ := os.Getwd()
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, colorize(promptPwdColor, pwd, colored))

	promptChar := "$"
	if os.Getuid() == 0 {
		promptChar = "#"
	}
	return strings.ReplaceAll(prompt, `\$`, promptChar)
}

func (s *Shell) isTerminal() bool {
	if s.Readline == nil || s.Readline.Config.FuncIsTerminal == nil {
		return false
	}
	return s.Readline.Config.FuncIsTerminal()
}

func colorize(c *color.Color, text string, enabled bool) string {
	if !enabled {
		return text
	}
	return c.Sprint(text)
}
