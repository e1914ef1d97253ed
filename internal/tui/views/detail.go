// Package views contains the bubbletea models of the terminal UI.
package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/basecamp/todo-cli/internal/models"
	"github.com/basecamp/todo-cli/internal/todolist"
	"github.com/basecamp/todo-cli/internal/tui"
	"github.com/basecamp/todo-cli/internal/tui/chrome"
)

// DefaultSearchDebounce is how long typing must pause before the item list
// is filtered.
const DefaultSearchDebounce = 500 * time.Millisecond

// LoadFunc fetches the page shown by the detail view.
type LoadFunc func(ctx context.Context) (*todolist.Page, error)

// DetailConfig configures a Detail view.
type DetailConfig struct {
	Load     LoadFunc
	Backend  todolist.Backend
	Styles   *tui.Styles
	Debounce time.Duration
	Logger   *slog.Logger
}

// detailFocus tracks whether the text input or the item list has focus.
type detailFocus int

const (
	focusInput detailFocus = iota
	focusList
)

// pageLoadedMsg carries the result of a (re)load.
type pageLoadedMsg struct {
	page *todolist.Page
	err  error
}

// searchDebounceMsg is sent after the debounce timer expires.
type searchDebounceMsg struct {
	term string
	seq  int
}

// mutationDoneMsg is sent when a mutation's remote step has returned.
type mutationDoneMsg struct {
	pending todolist.Pending
	err     error
}

// Detail is the detail page of a single to-do: a "find or create" input
// above the item list.
type Detail struct {
	ctx      context.Context
	load     LoadFunc
	backend  todolist.Backend
	styles   *tui.Styles
	keys     detailKeyMap
	help     help.Model
	logger   *slog.Logger
	debounce time.Duration

	input   textinput.Model
	spinner spinner.Model
	toast   chrome.Toast
	focus   detailFocus
	cursor  int

	width, height int

	ctrl        *todolist.Controller
	term        string // last debounced term
	debounceSeq int    // monotonic counter to discard stale debounce msgs
	refreshing  int    // loads in flight
	notFound    bool
	loadErr     error

	// queued collects commands produced by controller hooks during Update.
	queued []tea.Cmd
}

// NewDetail creates the detail view. The view is not usable until Init's
// load completes.
func NewDetail(ctx context.Context, cfg DetailConfig) *Detail {
	styles := cfg.Styles
	if styles == nil {
		styles = tui.NewStyles()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}

	ti := textinput.New()
	ti.Placeholder = "Find or create an item..."
	ti.CharLimit = 256
	ti.Prompt = "› "
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Theme().Primary)

	return &Detail{
		ctx:      ctx,
		load:     cfg.Load,
		backend:  cfg.Backend,
		styles:   styles,
		keys:     defaultDetailKeyMap(),
		help:     help.New(),
		logger:   logger,
		debounce: debounce,
		input:    ti,
		spinner:  s,
		toast:    chrome.NewToast(styles),
	}
}

// Controller returns the item list controller, nil before the first load.
func (v *Detail) Controller() *todolist.Controller {
	return v.ctrl
}

// NotFound reports whether the to-do could not be loaded.
func (v *Detail) NotFound() bool {
	return v.notFound
}

// Init implements tea.Model.
func (v *Detail) Init() tea.Cmd {
	v.refreshing++
	return tea.Batch(v.spinner.Tick, textinput.Blink, v.fetch())
}

// Update implements tea.Model.
func (v *Detail) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := v.update(msg)
	queued := v.queued
	v.queued = nil
	if len(queued) == 0 {
		return v, cmd
	}
	return v, tea.Batch(append([]tea.Cmd{cmd}, queued...)...)
}

func (v *Detail) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.setSize(msg.Width, msg.Height)
		return nil

	case pageLoadedMsg:
		return v.handleLoaded(msg)

	case searchDebounceMsg:
		if msg.seq == v.debounceSeq {
			v.term = msg.term
			if v.ctrl != nil {
				v.ctrl.SetSearchTerm(msg.term)
				v.clampCursor()
			}
		}
		return nil

	case mutationDoneMsg:
		return v.handleMutationDone(msg)

	case spinner.TickMsg:
		if v.refreshing > 0 {
			var cmd tea.Cmd
			v.spinner, cmd = v.spinner.Update(msg)
			return cmd
		}
		return nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return tea.Batch(cmd, v.toast.Update(msg))
}

func (v *Detail) handleLoaded(msg pageLoadedMsg) tea.Cmd {
	if v.refreshing > 0 {
		v.refreshing--
	}
	if msg.err != nil {
		if errors.Is(msg.err, todolist.ErrNotFound) {
			v.notFound = true
			return nil
		}
		v.loadErr = msg.err
		v.logger.Debug("load failed", "error", msg.err)
		return nil
	}

	v.notFound = false
	v.loadErr = nil
	if v.ctrl == nil {
		v.ctrl = todolist.NewController(msg.page.Todo, msg.page.Items, v.backend, v.hooks())
		if v.term != "" {
			v.ctrl.SetSearchTerm(v.term)
		}
	} else {
		v.ctrl.Reload(msg.page.Todo, msg.page.Items)
	}
	v.clampCursor()
	return nil
}

func (v *Detail) handleMutationDone(msg mutationDoneMsg) tea.Cmd {
	res := msg.pending.Finish(v.ctx, msg.err)
	if !res.OK() {
		v.logger.Debug("mutation failed", "op", res.Op, "error", res.Err)
		return nil
	}
	if res.Op == "create" {
		v.input.SetValue("")
		return v.scheduleSearch()
	}
	return nil
}

func (v *Detail) hooks() todolist.Hooks {
	return todolist.Hooks{
		Refresh: func(context.Context) {
			v.queued = append(v.queued, v.refresh())
		},
		ToastError: func(err error) {
			v.queued = append(v.queued, v.toast.ShowError(err))
		},
	}
}

func (v *Detail) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	case key.Matches(msg, v.keys.Refresh):
		return v.refresh()
	}

	if v.notFound || v.ctrl == nil {
		return nil
	}

	switch {
	case key.Matches(msg, v.keys.Focus):
		v.toggleFocus()
		return nil
	case msg.Type == tea.KeyUp:
		v.move(-1)
		return nil
	case msg.Type == tea.KeyDown:
		v.move(1)
		return nil
	}

	if v.focus == focusInput {
		if key.Matches(msg, v.keys.Submit) {
			return v.submit()
		}
		return v.updateInput(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Up):
		v.move(-1)
	case key.Matches(msg, v.keys.Down):
		v.move(1)
	case key.Matches(msg, v.keys.Toggle):
		return v.toggleSelected()
	case key.Matches(msg, v.keys.Delete):
		return v.deleteSelected()
	}
	return nil
}

func (v *Detail) updateInput(msg tea.KeyMsg) tea.Cmd {
	before := v.input.Value()
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	if v.input.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, v.scheduleSearch())
}

// scheduleSearch debounces the current input value into a search term.
func (v *Detail) scheduleSearch() tea.Cmd {
	v.debounceSeq++
	seq := v.debounceSeq
	term := v.input.Value()
	return tea.Tick(v.debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{term: term, seq: seq}
	})
}

func (v *Detail) submit() tea.Cmd {
	title := v.input.Value()
	if title == "" {
		return nil
	}
	return v.mutate(todolist.CreateItemMutation{Title: title})
}

func (v *Detail) toggleSelected() tea.Cmd {
	item, ok := v.selected()
	if !ok {
		return nil
	}
	return v.mutate(todolist.ToggleCompleteMutation{ItemID: item.ID, Completed: !item.Completed})
}

func (v *Detail) deleteSelected() tea.Cmd {
	item, ok := v.selected()
	if !ok {
		return nil
	}
	cmd := v.mutate(todolist.DeleteItemMutation{ItemID: item.ID})
	v.clampCursor()
	return cmd
}

// mutate applies m locally and returns the Cmd running its remote step.
func (v *Detail) mutate(m todolist.Mutation) tea.Cmd {
	pending := v.ctrl.Apply(m)
	ctx := v.ctx
	return func() tea.Msg {
		return mutationDoneMsg{pending: pending, err: pending.Remote(ctx)}
	}
}

func (v *Detail) refresh() tea.Cmd {
	v.refreshing++
	return tea.Batch(v.spinner.Tick, v.fetch())
}

func (v *Detail) fetch() tea.Cmd {
	load, ctx := v.load, v.ctx
	return func() tea.Msg {
		page, err := load(ctx)
		return pageLoadedMsg{page: page, err: err}
	}
}

func (v *Detail) toggleFocus() {
	if v.focus == focusInput {
		v.focus = focusList
		v.input.Blur()
		return
	}
	v.focus = focusInput
	v.input.Focus()
}

func (v *Detail) selected() (models.Item, bool) {
	items := v.ctrl.Visible()
	if v.cursor < 0 || v.cursor >= len(items) {
		return models.Item{}, false
	}
	return items[v.cursor], true
}

func (v *Detail) move(delta int) {
	v.cursor += delta
	v.clampCursor()
}

func (v *Detail) clampCursor() {
	n := 0
	if v.ctrl != nil {
		n = len(v.ctrl.Visible())
	}
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *Detail) setSize(w, h int) {
	v.width = w
	v.height = h
	v.input.Width = max(0, w-6)
	v.help.Width = w
	v.toast.SetWidth(w)
}

// View implements tea.Model.
func (v *Detail) View() string {
	if v.notFound {
		return v.styles.Error.Render("To-do not found.") + "\n" +
			v.styles.Muted.Render("Press esc to quit.") + "\n"
	}
	if v.ctrl == nil {
		if v.loadErr != nil {
			return v.styles.Error.Render("Error: "+v.loadErr.Error()) + "\n" +
				v.styles.Muted.Render("Press ctrl+r to retry, esc to quit.") + "\n"
		}
		return fmt.Sprintf("%s Loading to-do...\n", v.spinner.View())
	}

	var b strings.Builder

	title := v.styles.Title.Render(v.ctrl.Todo().Title)
	if v.refreshing > 0 {
		title += " " + v.spinner.View()
	}
	b.WriteString(title + "\n")
	b.WriteString(v.styles.Input.Render(v.input.View()) + "\n\n")
	b.WriteString(v.renderItems())

	if v.loadErr != nil {
		b.WriteString("\n" + v.styles.Warning.Render("Refresh failed: "+v.loadErr.Error()) + "\n")
	}
	if toast := v.toast.View(); toast != "" {
		b.WriteString("\n" + toast + "\n")
	}
	b.WriteString(v.styles.Help.Render(v.help.View(v.keys)))
	return b.String()
}

func (v *Detail) renderItems() string {
	items := v.ctrl.Visible()
	if len(items) == 0 {
		if v.term != "" {
			return v.styles.Muted.Render(fmt.Sprintf("No items match %q. Press enter to create it.", v.term)) + "\n"
		}
		return v.styles.Muted.Render("No items yet.") + "\n"
	}

	var b strings.Builder
	for i, it := range items {
		cursor := "  "
		if i == v.cursor && v.focus == focusList {
			cursor = v.styles.Cursor.Render("› ")
		}
		box := "[ ] "
		style := v.styles.Item
		if it.Completed {
			box = "[x] "
			style = v.styles.Completed
		}
		if i == v.cursor && v.focus == focusList {
			style = style.Inherit(v.styles.Selected)
		}
		b.WriteString(cursor + box + style.Render(it.Title) + "\n")
	}
	return b.String()
}
