package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-go-golems/rivulet/cmd/rivulet/cmds"
	"github.com/go-go-golems/rivulet/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "rivulet",
	Short: "rivulet reconciles streamed text deltas into stable display snapshots",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// reinitialize the logger now that --log-level and co are parsed
		level, _ := cmd.Flags().GetString("log-level")
		withCaller, _ := cmd.Flags().GetBool("with-caller")
		return logging.Setup(level, withCaller)
	},
}

func main() {
	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.rivulet/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("with-caller", false, "log caller information")

	rootCmd.AddCommand(cmds.NewSimulateCommand())
	rootCmd.AddCommand(cmds.NewListenCommand())
	rootCmd.AddCommand(cmds.NewTraceCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
