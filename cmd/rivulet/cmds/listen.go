package cmds

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/rivulet/pkg/stream"
	"github.com/go-go-golems/rivulet/pkg/transport"
)

func NewListenCommand() *cobra.Command {
	var showTrace bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Subscribe to the Redis Streams transport and print display snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tracer, closeTracer, err := buildTracer(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeTracer()

			if err := transport.EnsureGroupAtTail(ctx, cfg.Redis.Addr, cfg.Topic, cfg.Redis.Group); err != nil {
				return err
			}
			sub, err := transport.NewRedisSubscriber(cfg.Redis)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sess := stream.NewSession(
				stream.WithSink(func(snap stream.Snapshot) { printSnapshot(out, snap) }),
				stream.WithObserver(tracer),
			)

			router, err := transport.NewRouter(cfg.Topic, sub, sess)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return router.Run(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				return router.Close()
			})

			err = g.Wait()

			// flush anything still streaming so partial text is not lost silently
			for _, snap := range sess.OnCancel("listener shutting down") {
				printSnapshot(out, snap)
			}
			if showTrace {
				dumpTrace(out, tracer)
			}
			if err != nil {
				log.Warn().Err(err).Str("component", "cli").Msg("listener stopped with error")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTrace, "dump-trace", false, "print the trace ring buffer on shutdown")
	return cmd
}
