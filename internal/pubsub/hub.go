package pubsub

import (
	"sync"

	"github.com/parleyhq/parley/internal/events"
)

// Hub is the central container for all domain brokers.
// It provides lifecycle management and debugging capabilities.
type Hub struct { //nolint:govet // fieldalignment: preserving logical field order
	Agent     *Broker[events.AgentEvent]
	Session   *Broker[events.SessionEvent]
	Integrity *Broker[events.IntegrityEvent]

	registry *Registry
	done     chan struct{}
}

// NewHub creates a new Hub with all domain brokers initialized.
func NewHub() *Hub {
	h := &Hub{
		Agent:     NewBroker[events.AgentEvent]("agent"),
		Session:   NewBroker[events.SessionEvent]("session"),
		Integrity: NewBroker[events.IntegrityEvent]("integrity"),
		registry:  NewRegistry(),
		done:      make(chan struct{}),
	}

	// Register all brokers in the registry for debugging
	h.registry.Register("agent", h.Agent)
	h.registry.Register("session", h.Session)
	h.registry.Register("integrity", h.Integrity)

	return h
}

// Shutdown gracefully shuts down all brokers.
func (h *Hub) Shutdown() {
	select {
	case <-h.done:
		return // Already shut down
	default:
		close(h.done)
	}

	// Shutdown all brokers concurrently
	var wg sync.WaitGroup
	wg.Add(3)

	go func() { defer wg.Done(); h.Agent.Shutdown() }()
	go func() { defer wg.Done(); h.Session.Shutdown() }()
	go func() { defer wg.Done(); h.Integrity.Shutdown() }()

	wg.Wait()
}

// IsShutdown returns true if the hub has been shut down.
func (h *Hub) IsShutdown() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that's closed when the hub is shut down.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Registry returns the debug registry for introspection.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// AllMetrics returns metrics for all brokers.
func (h *Hub) AllMetrics() []BrokerMetrics {
	return []BrokerMetrics{
		h.Agent.Metrics(),
		h.Session.Metrics(),
		h.Integrity.Metrics(),
	}
}

// DebugString returns a formatted debug string for all brokers.
func (h *Hub) DebugString() string {
	return h.registry.DebugString()
}
