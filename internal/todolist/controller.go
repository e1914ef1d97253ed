// Package todolist holds the state of a single to-do's detail page: the
// searchable item list and the optimistic mutations applied to it.
package todolist

import (
	"context"

	"github.com/basecamp/todo-cli/internal/models"
)

// Hooks are the side effects a Controller triggers. Either may be nil.
type Hooks struct {
	// Refresh re-fetches the page. It runs after every mutation, successful
	// or not, and is expected to end in a call to Reload.
	Refresh func(ctx context.Context)

	// ToastError notifies the user of a failed mutation.
	ToastError func(err error)
}

// Result is the outcome of a mutation.
type Result struct {
	Op  string
	Err error // a *MutationError, nil on success
}

// OK reports whether the backend accepted the mutation.
func (r Result) OK() bool {
	return r.Err == nil
}

// Controller owns the visible item list of one to-do.
//
// A Controller is not safe for concurrent use; it belongs to the goroutine
// driving the view.
type Controller struct {
	todo    models.Todo
	all     []models.Item // last known good, in page order
	visible []models.Item
	term    string

	backend Backend
	hooks   Hooks
}

// NewController creates a controller showing all of items.
func NewController(todo models.Todo, items []models.Item, backend Backend, hooks Hooks) *Controller {
	all := models.CloneItems(items)
	return &Controller{
		todo:    todo,
		all:     all,
		visible: models.CloneItems(all),
		backend: backend,
		hooks:   hooks,
	}
}

// Todo returns the to-do being shown.
func (c *Controller) Todo() models.Todo {
	return c.todo
}

// Items returns the full item set from the last load.
func (c *Controller) Items() []models.Item {
	return models.CloneItems(c.all)
}

// Visible returns the items currently shown.
func (c *Controller) Visible() []models.Item {
	return models.CloneItems(c.visible)
}

// SearchTerm returns the active search term.
func (c *Controller) SearchTerm() string {
	return c.term
}

// SetSearchTerm narrows the visible list to titles containing term. A
// non-empty term filters what is currently visible, so successive terms
// only ever narrow; "mil" after "milk" does not bring anything back. Only
// the empty term restores the full set.
func (c *Controller) SetSearchTerm(term string) {
	c.term = term
	if term == "" {
		c.visible = models.CloneItems(c.all)
		return
	}
	c.visible = FilterItems(c.visible, term)
}

// Reload replaces the state with freshly fetched data. An active search
// term is applied to the new full set.
func (c *Controller) Reload(todo models.Todo, items []models.Item) {
	c.todo = todo
	c.all = models.CloneItems(items)
	c.visible = FilterItems(c.all, c.term)
}

// Pending is a mutation whose local step has been applied and whose remote
// step has not yet run.
type Pending struct {
	c *Controller
	m Mutation

	// Captured at Apply so Remote never reads controller state.
	todoID  int64
	backend Backend
}

// Mutation returns the mutation being applied.
func (p Pending) Mutation() Mutation {
	return p.m
}

// Apply runs the local step of m immediately.
func (c *Controller) Apply(m Mutation) Pending {
	c.visible = m.ApplyLocally(c.visible)
	return Pending{c: c, m: m, todoID: c.todo.ID, backend: c.backend}
}

// Remote sends the mutation to the backend. It does not touch controller
// state and may run on any goroutine.
func (p Pending) Remote(ctx context.Context) error {
	return p.m.ApplyRemotely(ctx, p.backend, p.todoID)
}

// Finish settles the mutation with the outcome of Remote: a failure is
// reported through ToastError, and Refresh runs in every case. There is no
// rollback; the refresh is what reconciles the visible list.
func (p Pending) Finish(ctx context.Context, remoteErr error) Result {
	defer p.c.refresh(ctx)
	return p.c.settle(p.m, remoteErr)
}

// Run performs Remote and Finish on the calling goroutine.
func (p Pending) Run(ctx context.Context) Result {
	return p.Finish(ctx, p.Remote(ctx))
}

// CreateItem asks the backend to add an item titled title. Nothing is
// inserted locally. Callers should clear their input only when the result
// is OK.
func (c *Controller) CreateItem(ctx context.Context, title string) Result {
	return c.Apply(CreateItemMutation{Title: title}).Run(ctx)
}

// ToggleComplete marks an item completed or not, showing the change before
// the backend answers.
func (c *Controller) ToggleComplete(ctx context.Context, itemID int64, checked bool) Result {
	return c.Apply(ToggleCompleteMutation{ItemID: itemID, Completed: checked}).Run(ctx)
}

// DeleteItem removes an item, hiding it before the backend answers.
func (c *Controller) DeleteItem(ctx context.Context, itemID int64) Result {
	return c.Apply(DeleteItemMutation{ItemID: itemID}).Run(ctx)
}

func (c *Controller) settle(m Mutation, remoteErr error) Result {
	res := Result{Op: m.Op()}
	if remoteErr == nil {
		return res
	}
	res.Err = &MutationError{Op: m.Op(), ItemID: m.Target(), Err: remoteErr}
	if c.hooks.ToastError != nil {
		c.hooks.ToastError(res.Err)
	}
	return res
}

func (c *Controller) refresh(ctx context.Context) {
	if c.hooks.Refresh != nil {
		c.hooks.Refresh(ctx)
	}
}
