package cmds

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/go-go-golems/rivulet/pkg/config"
	"github.com/go-go-golems/rivulet/pkg/stream"
	"github.com/go-go-golems/rivulet/pkg/trace"
)

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// buildTracer wires the configured flag store into a controller and reads the
// persisted flag. Returns the controller and a close func for the store.
func buildTracer(ctx context.Context, cfg config.Config) (*trace.Controller, func(), error) {
	flags, err := cfg.FlagStore()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if c, ok := flags.(io.Closer); ok {
			_ = c.Close()
		}
	}
	ctrl := trace.NewController(flags, cfg.Trace.Capacity)
	if err := ctrl.Init(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return ctrl, closeFn, nil
}

func printSnapshot(w io.Writer, snap stream.Snapshot) {
	suffix := ""
	if snap.ErrReason != "" {
		suffix = fmt.Sprintf(" error=%q", snap.ErrReason)
	}
	fmt.Fprintf(w, "[%s] %s chunks=%d%s\n%s\n", snap.NodeID, snap.Status, snap.ChunkCount, suffix, snap.Text)
}

func dumpTrace(w io.Writer, ctrl *trace.Controller) {
	entries := ctrl.Entries()
	fmt.Fprintf(w, "--- trace (%d entries) ---\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "%s %-16s node=%s payload=%v\n", e.Timestamp.Format("15:04:05.000"), e.Kind, e.NodeID, e.Payload)
	}
}
