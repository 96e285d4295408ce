package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar shows the backend link state, the active session and the
// dashboard build version.
type StatusBar struct {
	container    *fyne.Container
	linkLabel    *widget.Label
	sessionLabel *widget.Label
	versionLabel *widget.Label
}

func NewStatusBar(version string) *StatusBar {
	linkLabel := widget.NewLabel("Backend: disconnected")
	sessionLabel := widget.NewLabel("Session: --")
	versionLabel := widget.NewLabel(version)

	rightSection := container.NewHBox(
		sessionLabel,
		widget.NewSeparator(),
		versionLabel,
	)

	mainContainer := container.NewBorder(
		nil, nil,
		linkLabel,
		rightSection,
	)

	return &StatusBar{
		container:    mainContainer,
		linkLabel:    linkLabel,
		sessionLabel: sessionLabel,
		versionLabel: versionLabel,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetLinkState(state string) {
	sb.linkLabel.SetText(fmt.Sprintf("Backend: %s", state))
}

func (sb *StatusBar) SetSession(sessionID string) {
	if sessionID == "" {
		sb.sessionLabel.SetText("Session: --")
		return
	}
	sb.sessionLabel.SetText(fmt.Sprintf("Session: %s", sessionID))
}
