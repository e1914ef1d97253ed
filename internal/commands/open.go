package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/basecamp/todo-cli/internal/config"
	"github.com/basecamp/todo-cli/internal/output"
	"github.com/basecamp/todo-cli/internal/todolist"
	"github.com/basecamp/todo-cli/internal/tui"
	"github.com/basecamp/todo-cli/internal/tui/views"
)

// NewOpenCmd creates the open command, which runs the interactive view.
func NewOpenCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "open <todo-id>",
		Short: "Open a to-do in the interactive view",
		Long: `Open a to-do full screen.

Type to filter items; press enter to add the typed text as an item. Tab moves
focus to the list, where x toggles and d deletes the selected item.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			todoID, err := parseID(args[0], "to-do")
			if err != nil {
				return err
			}
			if !app.IsInteractive() {
				return output.ErrUsageHint("open needs an interactive terminal", "Use: todo show "+args[0])
			}

			// The screen belongs to the view; logs go to a file or nowhere.
			logger := slog.New(slog.DiscardHandler)
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // G304: user-supplied path
				if err != nil {
					return err
				}
				defer f.Close()
				logger = fileLogger(f)
			}

			ctx := cmd.Context()
			detail := views.NewDetail(ctx, views.DetailConfig{
				Load: func(ctx context.Context) (*todolist.Page, error) {
					return todolist.Load(ctx, app.API, todoID)
				},
				Backend:  app.API,
				Styles:   tui.NewStylesWithTheme(tui.ResolveTheme(config.GlobalConfigDir())),
				Debounce: app.Config.SearchDebounce(),
				Logger:   logger,
			})

			p := tea.NewProgram(detail, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return err
			}
			if detail.NotFound() {
				return output.ErrNotFound("Todo", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	return cmd
}

func fileLogger(w io.Writer) *slog.Logger {
	return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.DebugLevel,
		ReportTimestamp: true,
	}))
}
