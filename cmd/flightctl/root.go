package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Domenick1991/flightbooking/internal/client"
	"github.com/spf13/cobra"
)

type options struct {
	addr    string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:          "flightctl",
		Short:        "Talk to a flight booking server over its line protocol",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.addr, "addr", envOrDefault("FLIGHTS_ADDR", "127.0.0.1:8080"), "server address")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "per request timeout")

	rootCmd.AddCommand(
		newSendCmd(opts),
		newFlightsCmd(opts),
		newSeatsCmd(opts),
		newBookCmd(opts),
		newShellCmd(opts),
	)
	return rootCmd
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *options) dial(ctx context.Context) (*client.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return client.Dial(ctx, o.addr)
}

func (o *options) send(ctx context.Context, c *client.Client, line string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	resp, err := c.Send(ctx, line)
	if err != nil {
		return "", fmt.Errorf("%s: %w", line, err)
	}
	return resp, nil
}

// roundTrip opens a connection for a single request.
func (o *options) roundTrip(ctx context.Context, line string) (string, error) {
	c, err := o.dial(ctx)
	if err != nil {
		return "", err
	}
	defer c.Close()
	return o.send(ctx, c, line)
}
