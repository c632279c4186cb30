package output

import (
	"errors"
	"fmt"
	"sync"
)

// Sink receives Event values and *audit.RunResult values in the order the
// engine produces them. Close flushes anything aggregated.
type Sink interface {
	Write(v any) error
	Close() error
}

// Manager fans writes out to every sink. A failing sink does not stop the
// others. Writes are serialized, so sinks see one value at a time even when
// targets are audited concurrently.
type Manager struct {
	mu    sync.Mutex
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if s == nil {
		return fmt.Errorf("sink must not be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
	return nil
}

// Len returns the number of sinks.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sinks)
}

func (m *Manager) Write(v any) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(v); err != nil {
			errs = append(errs, fmt.Errorf("write %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors writing to sinks: %w", errors.Join(errs...))
	}
	return nil
}

func (m *Manager) Close() error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sinks: %w", errors.Join(errs...))
	}
	return nil
}
