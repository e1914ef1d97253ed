package chrome

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecamp/todo-cli/internal/tui"
)

func TestToast_GenerationPreventsEarlyDismiss(t *testing.T) {
	toast := NewToast(tui.NewStyles())
	toast.SetWidth(80)

	toast.Show("First", false)
	firstGen := toast.generation

	toast.Show("Second", false)
	assert.True(t, toast.Visible())
	assert.Equal(t, "Second", toast.Message())

	// The first tick must not dismiss the second toast.
	toast.Update(toastTickMsg{generation: firstGen})
	assert.True(t, toast.Visible())
	assert.Equal(t, "Second", toast.Message())

	toast.Update(toastTickMsg{generation: toast.generation})
	assert.False(t, toast.Visible())
	assert.Empty(t, toast.View())
}

func TestToast_ShowErrorRendersMessage(t *testing.T) {
	toast := NewToast(tui.NewStyles())
	toast.SetWidth(40)

	cmd := toast.ShowError(errors.New("create item failed"))
	require.NotNil(t, cmd)

	assert.True(t, toast.Visible())
	assert.Contains(t, toast.View(), "create item failed")
}

func TestToast_IgnoresOtherMessages(t *testing.T) {
	toast := NewToast(tui.NewStyles())
	toast.Show("Saved", false)

	toast.Update("unrelated")
	assert.True(t, toast.Visible())
}
