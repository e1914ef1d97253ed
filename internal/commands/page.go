package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basecamp/todo-cli/internal/appctx"
	"github.com/basecamp/todo-cli/internal/models"
	"github.com/basecamp/todo-cli/internal/output"
	"github.com/basecamp/todo-cli/internal/todolist"
)

// pageResult is the printed state of a to-do's detail page.
type pageResult struct {
	Todo       models.Todo   `json:"todo"`
	Items      []models.Item `json:"items"`
	SearchTerm string        `json:"search_term,omitempty"`
}

// IDList implements output.IDLister.
func (p pageResult) IDList() any {
	return p.Items
}

// Markdown implements output.Markdowner.
func (p pageResult) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Todo.Title)
	if p.SearchTerm != "" {
		fmt.Fprintf(&b, "_Matching %q_\n\n", p.SearchTerm)
	}
	if len(p.Items) == 0 {
		b.WriteString("No items.\n")
		return b.String()
	}
	for _, it := range p.Items {
		box := " "
		if it.Completed {
			box = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s (#%d)\n", box, it.Title, it.ID)
	}
	return b.String()
}

func newPageResult(c *todolist.Controller) pageResult {
	items := c.Visible()
	if items == nil {
		items = []models.Item{}
	}
	return pageResult{Todo: c.Todo(), Items: items, SearchTerm: c.SearchTerm()}
}

// session drives a Controller from a single command. The refresh hook
// reloads the page synchronously; the toast hook logs a warning.
type session struct {
	app        *appctx.App
	todoID     int64
	ctrl       *todolist.Controller
	refreshErr error
	toasts     []error
}

func openSession(ctx context.Context, app *appctx.App, todoID int64) (*session, error) {
	page, err := todolist.Load(ctx, app.API, todoID)
	if err != nil {
		return nil, err
	}

	s := &session{app: app, todoID: todoID}
	s.ctrl = todolist.NewController(page.Todo, page.Items, app.API, todolist.Hooks{
		Refresh:    s.refresh,
		ToastError: s.toast,
	})
	return s, nil
}

func (s *session) refresh(ctx context.Context) {
	page, err := todolist.Load(ctx, s.app.API, s.todoID)
	if err != nil {
		s.refreshErr = err
		s.app.Logger.Debug("refresh failed", "todo", s.todoID, "error", err)
		return
	}
	s.refreshErr = nil
	s.ctrl.Reload(page.Todo, page.Items)
}

func (s *session) toast(err error) {
	s.toasts = append(s.toasts, err)
	s.app.Logger.Warn("mutation failed", "todo", s.todoID, "error", err)
}

// finish prints the refreshed page for a successful mutation and converts a
// failed one into a structured error.
func (s *session) finish(res todolist.Result, summary string) error {
	if !res.OK() {
		return mutationFailed(res.Err)
	}
	var opts []output.ResponseOption
	opts = append(opts, output.WithSummary(summary), output.WithBreadcrumbs(pageBreadcrumbs(s.todoID)...))
	if s.refreshErr != nil {
		opts = append(opts, output.WithNotice("Refresh failed: "+s.refreshErr.Error()))
	}
	return s.app.OK(newPageResult(s.ctrl), opts...)
}

// mutationFailed keeps the code of the underlying API error so the exit
// status reflects what the backend said.
func mutationFailed(err error) error {
	inner := output.AsError(err)
	return &output.Error{
		Code:       inner.Code,
		Message:    err.Error(),
		Hint:       inner.Hint,
		HTTPStatus: inner.HTTPStatus,
		Cause:      err,
	}
}

func pageBreadcrumbs(todoID int64) []output.Breadcrumb {
	id := strconv.FormatInt(todoID, 10)
	return []output.Breadcrumb{
		{Action: "add", Cmd: "todo items add " + id + " <title>", Description: "Add an item"},
		{Action: "check", Cmd: "todo items check " + id + " <item-id>", Description: "Complete an item"},
		{Action: "open", Cmd: "todo open " + id, Description: "Open the interactive view"},
	}
}

func requireApp(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

func parseID(value, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(value, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, output.ErrUsage(fmt.Sprintf("Invalid %s ID: %s", what, value))
	}
	return id, nil
}
