package components

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// InputRow is the text entry used to talk to the backend without a
// microphone.
type InputRow struct {
	container  *fyne.Container
	entry      *widget.Entry
	sendButton *widget.Button
	onSubmit   func(text string)
}

func NewInputRow() *InputRow {
	row := &InputRow{}

	row.entry = widget.NewEntry()
	row.entry.SetPlaceHolder("Type a message to Coda...")
	row.entry.OnSubmitted = func(string) { row.submit() }

	row.sendButton = widget.NewButton("Send", row.submit)

	row.container = container.NewBorder(nil, nil, nil, row.sendButton, row.entry)
	return row
}

func (ir *InputRow) GetContainer() *fyne.Container {
	return ir.container
}

func (ir *InputRow) SetSubmitHandler(handler func(text string)) {
	ir.onSubmit = handler
}

func (ir *InputRow) SetEnabled(enabled bool) {
	if enabled {
		ir.entry.Enable()
		ir.sendButton.Enable()
		return
	}
	ir.entry.Disable()
	ir.sendButton.Disable()
}

func (ir *InputRow) submit() {
	text := strings.TrimSpace(ir.entry.Text)
	if text == "" || ir.onSubmit == nil {
		return
	}
	ir.entry.SetText("")
	ir.onSubmit(text)
}
