package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownCommand is returned when a frontend invokes a command that
	// was never registered.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrDuplicateCommand is returned when a command name is registered twice.
	ErrDuplicateCommand = errors.New("command already registered")
)

// Handler is a callable backend operation invoked by name from the
// frontend layer.
type Handler func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// Registry holds the callable operations exposed to the frontend. The
// dashboard ships with an empty registry; nothing registers commands at
// startup, so every invocation fails with ErrUnknownCommand.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

func (r *Registry) Register(name string, handler Handler) error {
	if name == "" {
		return errors.New("command name must not be empty")
	}
	if handler == nil {
		return fmt.Errorf("command %q: handler must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCommand, name)
	}
	r.handlers[name] = handler
	return nil
}

func (r *Registry) Invoke(ctx context.Context, name string, payload json.RawMessage) (interface{}, error) {
	r.mu.RLock()
	handler, exists := r.handlers[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return handler(ctx, payload)
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
