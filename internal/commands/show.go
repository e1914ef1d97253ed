package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basecamp/todo-cli/internal/output"
	"github.com/basecamp/todo-cli/internal/todolist"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	var terms []string

	cmd := &cobra.Command{
		Use:   "show <todo-id>",
		Short: "Show a to-do and its items",
		Long: `Show a to-do and its items, newest first.

Each --search narrows the list further, in order, by case-insensitive
substring match on the item title.`,
		Example: `  todo show 1
  todo show 1 --search milk
  todo show 1 --json --jq '.data.items[].title'`,
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

			page, err := todolist.Load(cmd.Context(), app.API, todoID)
			if err != nil {
				return err
			}

			ctrl := todolist.NewController(page.Todo, page.Items, nil, todolist.Hooks{})
			for _, term := range terms {
				ctrl.SetSearchTerm(term)
			}

			result := newPageResult(ctrl)
			summary := fmt.Sprintf("%d items", len(result.Items))
			if ctrl.SearchTerm() != "" {
				summary = fmt.Sprintf("%d of %d items match %q", len(result.Items), len(page.Items), ctrl.SearchTerm())
			}
			return app.OK(result,
				output.WithSummary(summary),
				output.WithBreadcrumbs(pageBreadcrumbs(todoID)...),
			)
		},
	}

	cmd.Flags().StringArrayVarP(&terms, "search", "s", nil, "Filter items by title (repeat to narrow)")
	return cmd
}
