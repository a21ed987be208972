package cmds

import (
	"bufio"
	"os"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/rivulet/pkg/stream"
	"github.com/go-go-golems/rivulet/pkg/transport"
)

// demoScript interleaves two nodes and walks through the interesting merge
// shapes: cumulative extension, a shorter resend, a divergent tail, a final
// chunk, and an upstream failure that keeps partial text on screen.
func demoScript() []transport.Envelope {
	return []transport.Envelope{
		transport.NewDeltaEnvelope("assistant", "Hello, I can help", false),
		transport.NewDeltaEnvelope("critic", "Checking the answer", false),
		transport.NewDeltaEnvelope("assistant", "Hello, I can help you today", false),
		transport.NewDeltaEnvelope("assistant", "Hello, I can help", false),
		transport.NewDeltaEnvelope("assistant", "Hello, I can help you today.", true),
		transport.NewErrorEnvelope("critic", "upstream disconnected"),
	}
}

func readScript(path string) ([]transport.Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open script %s", path)
	}
	defer func() { _ = f.Close() }()

	var out []transport.Envelope
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		env, err := transport.ParseEnvelope(line)
		if err != nil {
			return nil, errors.Wrapf(err, "script %s", path)
		}
		out = append(out, env)
	}
	return out, errors.Wrapf(scanner.Err(), "read script %s", path)
}

func NewSimulateCommand() *cobra.Command {
	var scriptPath string
	var showTrace bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Feed a scripted delta transcript through the merge pipeline and print snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tracer, closeTracer, err := buildTracer(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeTracer()

			script := demoScript()
			if scriptPath != "" {
				script, err = readScript(scriptPath)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			sess := stream.NewSession(
				stream.WithSink(func(snap stream.Snapshot) { printSnapshot(out, snap) }),
				stream.WithObserver(tracer),
			)

			pubsub := transport.NewGoChannelPubSub()
			defer func() { _ = pubsub.Close() }()

			msgs, err := pubsub.Subscribe(ctx, cfg.Topic)
			if err != nil {
				return errors.Wrap(err, "subscribe")
			}

			handler := transport.ForwardFunc(sess)
			for _, env := range script {
				payload, err := env.Marshal()
				if err != nil {
					return err
				}
				if err := pubsub.Publish(cfg.Topic, message.NewMessage(env.ID, payload)); err != nil {
					return errors.Wrap(err, "publish")
				}
				msg := <-msgs
				if err := handler(msg); err != nil {
					return err
				}
				msg.Ack()
			}

			if showTrace {
				dumpTrace(out, tracer)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "JSONL file of envelopes (default: built-in demo)")
	cmd.Flags().BoolVar(&showTrace, "dump-trace", false, "print the trace ring buffer after the run")
	return cmd
}
