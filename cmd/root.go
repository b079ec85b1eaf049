package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/gosh-shell/gosh/core/auditlog"
	"github.com/gosh-shell/gosh/core/config"
	"github.com/gosh-shell/gosh/core/shell"
)

var (
	cfgPath     string
	commandLine string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gosh",
	Short: "An interactive line-oriented shell",
	Long: `gosh reads one line at a time from standard input, recognizes pipeline
and redirection syntax, runs builtins in-process and everything else as
child processes connected by pipes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		osFs := afero.NewOsFs()
		configuration, err := config.Load(osFs, cfgPath)
		if err != nil {
			return err
		}

		sh, err := shell.New(configuration, os.Stdin, os.Stdout, os.Stderr)
		if err != nil {
			return err
		}

		if configuration.AuditLog != "" {
			fd, err := auditlog.OpenFile(osFs, configuration.AuditLog)
			if err != nil {
				return err
			}
			defer fd.Close()
			sh.Audit = auditlog.New(fd)
		}

		var code int
		if commandLine != "" {
			code, _ = sh.RunLine(commandLine)
		} else {
			code = sh.Run()
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".gosh")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigDir(), "config path")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single line instead of the interactive prompt")
}
