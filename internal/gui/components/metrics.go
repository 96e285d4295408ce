package components

import (
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"coda-dashboard/internal/metrics"
)

// MetricsPanel shows backend resource usage and per-component latency.
type MetricsPanel struct {
	container    *fyne.Container
	memoryLabel  *widget.Label
	cpuLabel     *widget.Label
	uptimeLabel  *widget.Label
	timingsLabel *widget.Label
}

func NewMetricsPanel() *MetricsPanel {
	memoryLabel := widget.NewLabel("Memory: --")
	cpuLabel := widget.NewLabel("CPU: --")
	uptimeLabel := widget.NewLabel("Uptime: --")
	timingsLabel := widget.NewLabel("")
	timingsLabel.TextStyle = fyne.TextStyle{Monospace: true}

	mainContainer := container.NewVBox(
		widget.NewLabelWithStyle("Backend Metrics", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		memoryLabel,
		cpuLabel,
		uptimeLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Component Latency", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		timingsLabel,
	)

	return &MetricsPanel{
		container:    mainContainer,
		memoryLabel:  memoryLabel,
		cpuLabel:     cpuLabel,
		uptimeLabel:  uptimeLabel,
		timingsLabel: timingsLabel,
	}
}

func (mp *MetricsPanel) GetContainer() *fyne.Container {
	return mp.container
}

func (mp *MetricsPanel) SetSystemMetrics(memoryMB, cpuPercent, uptimeSeconds float64) {
	mp.memoryLabel.SetText(fmt.Sprintf("Memory: %.1f MB", memoryMB))
	mp.cpuLabel.SetText(fmt.Sprintf("CPU: %.1f%%", cpuPercent))
	mp.uptimeLabel.SetText(fmt.Sprintf("Uptime: %s", (time.Duration(uptimeSeconds) * time.Second).String()))
}

func (mp *MetricsPanel) SetTimings(stats []metrics.Stats) {
	if len(stats) == 0 {
		mp.timingsLabel.SetText("")
		return
	}

	var b strings.Builder
	for _, s := range stats {
		fmt.Fprintf(&b, "%-12s avg %6s  p95 %6s  n=%d\n",
			s.Component,
			formatDuration(s.Avg),
			formatDuration(s.P95),
			s.Count)
	}
	mp.timingsLabel.SetText(strings.TrimRight(b.String(), "\n"))
}

func formatDuration(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
