package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

func roleName(role string) string {
	if role == "assistant" {
		return "Coda"
	}
	return "You"
}

// Turn is one rendered conversation entry.
type Turn struct {
	Role string // "user" or "assistant"
	Text string
}

// ConversationPanel renders the user/assistant exchange, including the
// assistant turn streaming in token by token.
type ConversationPanel struct {
	scroll    *container.Scroll
	list      *widget.List
	turns     []Turn
	maxTurns  int
	streaming bool
}

func NewConversationPanel(maxTurns int) *ConversationPanel {
	if maxTurns <= 0 {
		maxTurns = 200
	}

	p := &ConversationPanel{maxTurns: maxTurns}

	p.list = widget.NewList(
		func() int { return len(p.turns) },
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Wrapping = fyne.TextWrapWord
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(p.turns) {
				return
			}
			turn := p.turns[id]
			label := obj.(*widget.Label)
			label.SetText(fmt.Sprintf("%s: %s", roleName(turn.Role), turn.Text))
		},
	)
	p.scroll = container.NewVScroll(p.list)

	return p
}

func (p *ConversationPanel) GetContainer() fyne.CanvasObject {
	return p.scroll
}

// AddUserTurn appends a completed user utterance.
func (p *ConversationPanel) AddUserTurn(text string) {
	p.streaming = false
	p.append(Turn{Role: "user", Text: text})
}

// AppendToken streams a token into the current assistant turn, starting a
// new turn when none is in flight.
func (p *ConversationPanel) AppendToken(token string) {
	if !p.streaming {
		p.streaming = true
		p.append(Turn{Role: "assistant"})
	}
	last := len(p.turns) - 1
	p.turns[last].Text += token
	p.list.Refresh()
	p.scroll.ScrollToBottom()
}

// FinishAssistantTurn replaces any streamed text with the final response.
func (p *ConversationPanel) FinishAssistantTurn(text string) {
	if p.streaming {
		p.streaming = false
		last := len(p.turns) - 1
		p.turns[last].Text = text
		p.list.Refresh()
		p.scroll.ScrollToBottom()
		return
	}
	p.append(Turn{Role: "assistant", Text: text})
}

// Turns returns a copy of the rendered turns.
func (p *ConversationPanel) Turns() []Turn {
	out := make([]Turn, len(p.turns))
	copy(out, p.turns)
	return out
}

func (p *ConversationPanel) Clear() {
	p.turns = nil
	p.streaming = false
	p.list.Refresh()
}

func (p *ConversationPanel) append(turn Turn) {
	p.turns = append(p.turns, turn)
	if len(p.turns) > p.maxTurns {
		p.turns = p.turns[len(p.turns)-p.maxTurns:]
	}
	p.list.Refresh()
	p.scroll.ScrollToBottom()
}
