package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosh-shell/gosh/core/auditlog"
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the command audit log.",
}

var catCommand = &cobra.Command{
	Use:   "cat FILE",
	Short: "Print every recorded line of an audit log.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		w := cmd.OutOrStdout()
		return auditlog.Read(fd, func(e *auditlog.Entry) {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				e.Time.Format(time.RFC3339),
				strings.Join(e.Commands, ","),
				e.Line)
		})
	},
}

func init() {
	logsCmd.AddCommand(catCommand)
	rootCmd.AddCommand(logsCmd)
}
