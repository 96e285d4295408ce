package components

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationStreaming(t *testing.T) {
	test.NewApp()
	panel := NewConversationPanel(10)

	panel.AddUserTurn("what's the weather")
	panel.AppendToken("It ")
	panel.AppendToken("is ")
	panel.AppendToken("sunny.")

	turns := panel.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "assistant", turns[1].Role)
	assert.Equal(t, "It is sunny.", turns[1].Text)
}

func TestConversationFinalReplacesStream(t *testing.T) {
	test.NewApp()
	panel := NewConversationPanel(10)

	panel.AppendToken("partial tok")
	panel.FinishAssistantTurn("The final, corrected response.")

	turns := panel.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "The final, corrected response.", turns[0].Text)
}

func TestConversationFinalWithoutStream(t *testing.T) {
	test.NewApp()
	panel := NewConversationPanel(10)

	panel.FinishAssistantTurn("direct response")

	turns := panel.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "assistant", turns[0].Role)
}

func TestConversationBounded(t *testing.T) {
	test.NewApp()
	panel := NewConversationPanel(3)

	panel.AddUserTurn("one")
	panel.FinishAssistantTurn("two")
	panel.AddUserTurn("three")
	panel.FinishAssistantTurn("four")

	turns := panel.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "two", turns[0].Text)
	assert.Equal(t, "four", turns[2].Text)
}

func TestConversationClear(t *testing.T) {
	test.NewApp()
	panel := NewConversationPanel(10)

	panel.AddUserTurn("hello")
	panel.Clear()

	assert.Empty(t, panel.Turns())
}
