// Package chrome holds the small UI pieces drawn around a view.
package chrome

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/basecamp/todo-cli/internal/tui"
)

// ToastDuration is how long a toast remains visible.
const ToastDuration = 3 * time.Second

// toastTickMsg dismisses the toast shown with the same generation.
type toastTickMsg struct {
	generation int
}

// Toast renders ephemeral notifications.
type Toast struct {
	styles     *tui.Styles
	width      int
	message    string
	isError    bool
	visible    bool
	generation int
}

// NewToast creates a new toast component.
func NewToast(styles *tui.Styles) Toast {
	return Toast{styles: styles}
}

// Show displays a toast message. A later Show restarts the timer.
func (t *Toast) Show(message string, isError bool) tea.Cmd {
	t.generation++
	t.message = message
	t.isError = isError
	t.visible = true

	gen := t.generation
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastTickMsg{generation: gen}
	})
}

// ShowError displays err as an error toast.
func (t *Toast) ShowError(err error) tea.Cmd {
	return t.Show(err.Error(), true)
}

// SetWidth sets the available width.
func (t *Toast) SetWidth(w int) {
	t.width = w
}

// Visible returns whether the toast is currently displayed.
func (t *Toast) Visible() bool {
	return t.visible
}

// Message returns the text being shown.
func (t *Toast) Message() string {
	return t.message
}

// Update handles toast tick messages.
func (t *Toast) Update(msg tea.Msg) tea.Cmd {
	if tick, ok := msg.(toastTickMsg); ok && tick.generation == t.generation {
		t.visible = false
		t.message = ""
	}
	return nil
}

// View renders the toast.
func (t Toast) View() string {
	if !t.visible || t.message == "" {
		return ""
	}

	theme := t.styles.Theme()
	fg := theme.Success
	if t.isError {
		fg = theme.Error
	}

	style := lipgloss.NewStyle().
		Foreground(fg).
		Align(lipgloss.Center).
		Width(t.width)

	return style.Render(t.message)
}
