package components

import (
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ActivityLog is the scrolling event feed at the bottom of the dashboard.
type ActivityLog struct {
	scroll   *container.Scroll
	grid     *widget.TextGrid
	lines    []string
	maxLines int
}

func NewActivityLog(maxLines int) *ActivityLog {
	if maxLines <= 0 {
		maxLines = 500
	}
	grid := widget.NewTextGrid()

	return &ActivityLog{
		scroll:   container.NewVScroll(grid),
		grid:     grid,
		maxLines: maxLines,
	}
}

func (a *ActivityLog) GetContainer() fyne.CanvasObject {
	return a.scroll
}

// Append adds one event line, trimming the feed to its bound.
func (a *ActivityLog) Append(eventType, summary string) {
	line := fmt.Sprintf("%s  %-18s %s", time.Now().Format("15:04:05"), eventType, summary)
	a.lines = append(a.lines, line)
	if len(a.lines) > a.maxLines {
		a.lines = a.lines[len(a.lines)-a.maxLines:]
	}
	a.grid.SetText(strings.Join(a.lines, "\n"))
	a.scroll.ScrollToBottom()
}

func (a *ActivityLog) Clear() {
	a.lines = nil
	a.grid.SetText("")
}

// Lines returns a copy of the rendered lines.
func (a *ActivityLog) Lines() []string {
	out := make([]string, len(a.lines))
	copy(out, a.lines)
	return out
}
