package cmds

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewTraceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Control the persisted diagnostic trace flag",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Turn tracing on (persists across restarts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tracer, closeTracer, err := buildTracer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeTracer()
			tracer.Enable(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "tracing enabled")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Turn tracing off (persists across restarts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tracer, closeTracer, err := buildTracer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeTracer()
			tracer.Disable(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "tracing disabled")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the persisted trace flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tracer, closeTracer, err := buildTracer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeTracer()
			state := "disabled"
			if tracer.Enabled() {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tracing %s\n", state)
			return nil
		},
	})

	return cmd
}
