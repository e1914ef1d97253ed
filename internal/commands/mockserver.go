package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/basecamp/todo-cli/internal/api/mock"
	"github.com/basecamp/todo-cli/internal/output"
)

// NewMockServerCmd creates the mock-server command.
func NewMockServerCmd() *cobra.Command {
	var (
		seedPath string
		addr     string
		prefix   string
		token    string
		latency  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory to-do backend",
		Long: `Serve an in-memory to-do backend for local use and demos.

Data is loaded from --seed (.yaml, .yml or .json) or a built-in sample and
is lost on exit. Point the client at it with --base-url or TODO_BASE_URL.`,
		Example: `  todo mock-server --seed fixtures/groceries.yaml
  TODO_BASE_URL=http://127.0.0.1:3000/api todo show 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			seed := mock.DefaultSeed()
			if seedPath != "" {
				seed, err = mock.LoadSeed(seedPath)
				if err != nil {
					return output.ErrUsage(err.Error())
				}
			}

			opts := []mock.Option{mock.WithLogger(app.Logger)}
			if token != "" {
				opts = append(opts, mock.WithToken(token))
			}
			if latency > 0 {
				opts = append(opts, mock.WithLatency(latency))
			}
			server := mock.NewServer(mock.NewBackend(seed, opts...), addr, prefix)

			errCh, err := server.Start()
			if err != nil {
				return output.ErrNetwork(err)
			}
			fmt.Fprintf(app.Stderr(), "Mock server listening on %s (%d to-dos)\n", server.BaseURL(), len(seed.Todos))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					return err
				}
			}
			return server.Stop()
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "", "Seed file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3000", "Listen address")
	cmd.Flags().StringVar(&prefix, "prefix", mock.DefaultPrefix, "Path prefix the API is served under")
	cmd.Flags().StringVar(&token, "token", "", "Require this bearer token")
	cmd.Flags().DurationVar(&latency, "latency", 0, "Delay every response")
	return cmd
}
