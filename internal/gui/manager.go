package gui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"coda-dashboard/internal/bus"
	"coda-dashboard/internal/events"
	"coda-dashboard/internal/gui/components"
	"coda-dashboard/internal/logging"
	"coda-dashboard/internal/metrics"
	"coda-dashboard/internal/version"
)

type subscription struct {
	eventType string
	token     int
}

// Manager owns the dashboard panels and routes backend events into them.
// Bus handlers run off the UI thread, so every widget mutation goes
// through fyne.Do.
type Manager struct {
	window   fyne.Window
	logger   *logging.Logger
	eventBus *bus.Bus
	tracker  *metrics.Tracker

	statusBar    *components.StatusBar
	conversation *components.ConversationPanel
	activity     *components.ActivityLog
	metricsPanel *components.MetricsPanel
	input        *components.InputRow

	sendHandler   func(text string) error
	subscriptions []subscription
}

func NewManager(window fyne.Window, logger *logging.Logger, eventBus *bus.Bus, tracker *metrics.Tracker, conversationTurns, activityLines int) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}

	m := &Manager{
		window:       window,
		logger:       logger,
		eventBus:     eventBus,
		tracker:      tracker,
		statusBar:    components.NewStatusBar(version.String()),
		conversation: components.NewConversationPanel(conversationTurns),
		activity:     components.NewActivityLog(activityLines),
		metricsPanel: components.NewMetricsPanel(),
		input:        components.NewInputRow(),
	}

	m.input.SetSubmitHandler(m.handleSubmit)
	m.subscribe()

	logger.Info("GUI", "dashboard panels initialized", map[string]interface{}{
		"conversation_turns": conversationTurns,
		"activity_lines":     activityLines,
	})
	return m
}

func (m *Manager) GetMainContainer() fyne.CanvasObject {
	left := container.NewBorder(
		nil,
		m.input.GetContainer(),
		nil, nil,
		m.conversation.GetContainer(),
	)

	top := container.NewHSplit(left, m.metricsPanel.GetContainer())
	top.SetOffset(0.7)

	main := container.NewVSplit(top, m.activity.GetContainer())
	main.SetOffset(0.72)

	return container.NewBorder(
		nil,
		m.statusBar.GetContainer(),
		nil, nil,
		main,
	)
}

// SetSendHandler wires the input row to the backend link.
func (m *Manager) SetSendHandler(handler func(text string) error) {
	m.sendHandler = handler
}

// SetLinkState updates the status bar; safe to call from any goroutine.
func (m *Manager) SetLinkState(state string) {
	fyne.Do(func() {
		m.statusBar.SetLinkState(state)
	})
}

func (m *Manager) Shutdown() {
	for _, sub := range m.subscriptions {
		m.eventBus.Unsubscribe(sub.eventType, sub.token)
	}
	m.subscriptions = nil
}

func (m *Manager) subscribe() {
	on := func(eventType events.Type, handler bus.Handler) {
		token := m.eventBus.Subscribe(string(eventType), handler)
		m.subscriptions = append(m.subscriptions, subscription{eventType: string(eventType), token: token})
	}

	on(events.STTResult, func(env events.Envelope) {
		text := env.String("text")
		fyne.Do(func() { m.conversation.AddUserTurn(text) })
	})

	on(events.LLMToken, func(env events.Envelope) {
		token := env.String("token")
		fyne.Do(func() { m.conversation.AppendToken(token) })
	})

	on(events.LLMResult, func(env events.Envelope) {
		text := env.String("text")
		fyne.Do(func() { m.conversation.FinishAssistantTurn(text) })
	})

	on(events.ConversationTurn, func(env events.Envelope) {
		role := env.String("role")
		content := env.String("content")
		fyne.Do(func() {
			if role == "assistant" {
				m.conversation.FinishAssistantTurn(content)
			} else {
				m.conversation.AddUserTurn(content)
			}
		})
	})

	on(events.ConversationStart, func(env events.Envelope) {
		session := env.SessionID
		if session == "" {
			session = env.String("session_id")
		}
		fyne.Do(func() { m.statusBar.SetSession(session) })
	})

	on(events.SystemMetrics, func(env events.Envelope) {
		memory, _ := env.Float("memory_mb")
		cpu, _ := env.Float("cpu_percent")
		uptime, _ := env.Float("uptime_seconds")
		fyne.Do(func() { m.metricsPanel.SetSystemMetrics(memory, cpu, uptime) })
	})

	on(events.ComponentTiming, func(env events.Envelope) {
		component := env.String("component")
		seconds, ok := env.Float("duration_seconds")
		if !ok || component == "" {
			return
		}
		m.tracker.Record(component, time.Duration(seconds*float64(time.Second)))
		stats := m.tracker.Snapshot()
		fyne.Do(func() { m.metricsPanel.SetTimings(stats) })
	})

	allToken := m.eventBus.Subscribe(bus.AllEvents, func(env events.Envelope) {
		if env.Type == events.LLMToken {
			return // token stream would drown the feed
		}
		summary := summarize(env)
		fyne.Do(func() { m.activity.Append(string(env.Type), summary) })
	})
	m.subscriptions = append(m.subscriptions, subscription{eventType: bus.AllEvents, token: allToken})
}

func (m *Manager) handleSubmit(text string) {
	if m.sendHandler == nil {
		return
	}
	if err := m.sendHandler(text); err != nil {
		m.logger.Error("GUI", err, map[string]interface{}{
			"action": "send_message",
		})
		fyne.Do(func() { m.activity.Append("dashboard", fmt.Sprintf("send failed: %v", err)) })
		return
	}
	fyne.Do(func() { m.conversation.AddUserTurn(text) })
}

// summarize builds the one-line activity feed entry for an event.
func summarize(env events.Envelope) string {
	switch env.Type {
	case events.STTInterim, events.STTResult:
		return truncate(env.String("text"), 80)
	case events.LLMStart:
		return fmt.Sprintf("model=%s", env.String("model"))
	case events.LLMResult:
		return truncate(env.String("text"), 80)
	case events.TTSStart, events.TTSProgress, events.TTSResult:
		return env.String("voice")
	case events.ToolCall:
		return fmt.Sprintf("tool=%s", env.String("name"))
	case events.SystemError, events.STTError, events.LLMError, events.TTSError, events.ToolError:
		return truncate(env.String("message"), 80)
	case events.SystemMetrics:
		memory, _ := env.Float("memory_mb")
		cpu, _ := env.Float("cpu_percent")
		return fmt.Sprintf("mem=%.0fMB cpu=%.0f%%", memory, cpu)
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
