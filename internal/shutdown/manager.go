package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"coda-dashboard/internal/logging"
)

const componentTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

type registration struct {
	name      string
	component Shutdownable
}

// Manager shuts registered components down in reverse registration order,
// bounding each by a timeout.
type Manager struct {
	mu         sync.Mutex
	components []registration
	logger     *logging.Logger
	done       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		logger: logger,
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (m *Manager) Register(name string, component Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, registration{name: name, component: component})
}

// Listen triggers shutdown on SIGINT/SIGTERM.
func (m *Manager) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("Shutdown", "signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
		case <-m.done:
		}
	}()
}

func (m *Manager) Shutdown() {
	m.mu.Lock()

	select {
	case <-m.done:
		m.mu.Unlock()
		return
	default:
		close(m.done)
	}

	components := make([]registration, len(m.components))
	copy(components, m.components)
	m.mu.Unlock()

	m.logger.Info("Shutdown", "sequence initiated", map[string]interface{}{
		"components": len(components),
	})
	m.cancel()

	for i := len(components) - 1; i >= 0; i-- {
		reg := components[i]

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			reg.component.Shutdown()
		}()

		select {
		case <-finished:
			m.logger.Debug("Shutdown", "component stopped", map[string]interface{}{
				"name": reg.name,
			})
		case <-time.After(componentTimeout):
			m.logger.Warning("Shutdown", "component timeout", map[string]interface{}{
				"name": reg.name,
			})
		}
	}

	m.logger.Info("Shutdown", "sequence completed", nil)
}

func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
