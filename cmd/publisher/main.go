package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/courses-service/internal/adapter/natsstan"
	"github.com/example/courses-service/internal/domain"
)

type options struct {
	clusterID string
	clientID  string
	url       string
	subject   string
	operation string
	message   string
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "publisher",
		Short: "Publish one envelope to the courses queue",
		Long: `Reads the message body from --message or, when omitted, from stdin
and publishes {"operationId": ..., "message": ...} to the courses subject.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := buildEnvelope(opts.operation, opts.message, cmd.InOrStdin())
			if err != nil {
				return err
			}
			pub, err := natsstan.NewPublisher(opts.clusterID, opts.clientID, opts.url)
			if err != nil {
				return err
			}
			defer pub.Close()

			n, err := pub.Publish(opts.subject, env)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d bytes to %s\n", n, opts.subject)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.clusterID, "cluster", envOr("STAN_CLUSTER_ID", "fis-cluster"), "NATS Streaming cluster id")
	f.StringVar(&opts.clientID, "client", envOr("STAN_PUB_ID", fmt.Sprintf("courses-pub-%d", time.Now().UnixNano())), "client id")
	f.StringVar(&opts.url, "url", envOr("NATS_URL", "nats://localhost:4222"), "NATS server url")
	f.StringVar(&opts.subject, "subject", envOr("STAN_SUBJECT", "courses_microservice"), "subject to publish to")
	f.StringVarP(&opts.operation, "operation", "o", "", "operationId of the envelope")
	f.StringVarP(&opts.message, "message", "m", "", "message JSON (stdin when empty)")
	_ = cmd.MarkFlagRequired("operation")
	return cmd
}

func buildEnvelope(operation, message string, stdin io.Reader) (domain.Envelope, error) {
	raw := []byte(message)
	if message == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return domain.Envelope{}, fmt.Errorf("read stdin: %w", err)
		}
		raw = b
	}
	if !json.Valid(raw) {
		return domain.Envelope{}, fmt.Errorf("message is not valid JSON")
	}
	return domain.Envelope{OperationID: operation, Message: json.RawMessage(raw)}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
