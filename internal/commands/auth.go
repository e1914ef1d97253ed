// Package commands implements the CLI commands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basecamp/todo-cli/internal/output"
	"github.com/basecamp/todo-cli/internal/tui"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  "Store, inspect and remove the API token sent to the to-do backend.",
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
		Long: `Store an API token for the configured backend.

The token is kept in the system keyring when available, otherwise in
credentials.json under the config directory. TODO_TOKEN overrides any
stored token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if token == "" {
				if !app.IsInteractive() {
					return output.ErrUsageHint("Token required", "Pass --token <token>")
				}
				token, err = tui.InputSecret("API token for " + app.Auth.Origin())
				if err != nil {
					return err
				}
			}

			if err := app.Auth.Login(token); err != nil {
				return err
			}
			status, err := app.Auth.Status()
			if err != nil {
				return err
			}
			return app.OK(status, output.WithSummary(fmt.Sprintf("Token stored for %s", status.Origin)))
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token")
	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if app.IsInteractive() {
				ok, err := tui.Confirm("Remove the stored token for "+app.Auth.Origin()+"?", true)
				if err != nil {
					return err
				}
				if !ok {
					return output.ErrCanceled("Logout canceled")
				}
			}
			if err := app.Auth.Logout(); err != nil {
				return err
			}
			return app.OK(map[string]any{"origin": app.Auth.Origin(), "authenticated": false},
				output.WithSummary("Logged out of "+app.Auth.Origin()))
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			status, err := app.Auth.Status()
			if err != nil {
				return err
			}

			summary := "Not logged in to " + status.Origin
			if status.Authenticated {
				summary = fmt.Sprintf("Logged in to %s (%s)", status.Origin, status.Source)
			}
			var opts []output.ResponseOption
			opts = append(opts, output.WithSummary(summary))
			if !status.Authenticated {
				opts = append(opts, output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "login",
					Cmd:         "todo auth login --token <token>",
					Description: "Store a token",
				}))
			}
			return app.OK(status, opts...)
		},
	}
}
