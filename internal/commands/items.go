package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basecamp/todo-cli/internal/output"
	"github.com/basecamp/todo-cli/internal/tui"
)

// NewItemsCmd creates the items command group.
func NewItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Add, complete and remove items",
		Long: `Change the items of a to-do.

Every change is followed by a refresh, and the refreshed page is printed.
A rejected change is reported with a non-zero exit status.`,
	}

	cmd.AddCommand(
		newItemsAddCmd(),
		newItemsCheckCmd("check", true),
		newItemsCheckCmd("uncheck", false),
		newItemsRemoveCmd(),
	)
	return cmd
}

func newItemsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add <todo-id> <title>",
		Short:   "Add an item",
		Example: `  todo items add 1 "Oat milk"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			todoID, err := parseID(args[0], "to-do")
			if err != nil {
				return err
			}
			title := args[1]
			if title == "" {
				return output.ErrUsage("Item title required")
			}

			s, err := openSession(cmd.Context(), app, todoID)
			if err != nil {
				return err
			}
			res := s.ctrl.CreateItem(cmd.Context(), title)
			return s.finish(res, fmt.Sprintf("Added %q", title))
		},
	}
}

func newItemsCheckCmd(use string, checked bool) *cobra.Command {
	short := "Mark an item completed"
	verb := "Completed"
	if !checked {
		short = "Mark an item not completed"
		verb = "Reopened"
	}

	return &cobra.Command{
		Use:   use + " <todo-id> <item-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			todoID, err := parseID(args[0], "to-do")
			if err != nil {
				return err
			}
			itemID, err := parseID(args[1], "item")
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), app, todoID)
			if err != nil {
				return err
			}
			res := s.ctrl.ToggleComplete(cmd.Context(), itemID, checked)
			return s.finish(res, fmt.Sprintf("%s item #%d", verb, itemID))
		},
	}
}

func newItemsRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm <todo-id> <item-id>",
		Aliases: []string{"delete"},
		Short:   "Remove an item",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			todoID, err := parseID(args[0], "to-do")
			if err != nil {
				return err
			}
			itemID, err := parseID(args[1], "item")
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), app, todoID)
			if err != nil {
				return err
			}

			if !force {
				if !app.IsInteractive() {
					return output.ErrUsageHint("Removing an item needs confirmation", "Pass --force to skip the prompt")
				}
				title := fmt.Sprintf("#%d", itemID)
				for _, it := range s.ctrl.Items() {
					if it.ID == itemID {
						title = fmt.Sprintf("%q", it.Title)
						break
					}
				}
				ok, err := tui.ConfirmDangerous(fmt.Sprintf("Remove %s from %s?", title, s.ctrl.Todo().Title))
				if err != nil {
					return err
				}
				if !ok {
					return output.ErrCanceled("Removal canceled")
				}
			}

			res := s.ctrl.DeleteItem(cmd.Context(), itemID)
			return s.finish(res, fmt.Sprintf("Removed item #%d", itemID))
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}
