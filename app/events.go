package app

import "sync"

// Events emitted by Framework.
const (
	EventPluginRegistered = "plugin.registered"
	EventContainerMade    = "container.made"
	EventPluginsRan       = "plugins.ran"
)

// Bus is a synchronous publish/subscribe event bus.
type Bus struct {
	events map[string][]func(payload any)
	mu     sync.RWMutex
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{events: make(map[string][]func(payload any))}
}

// Subscribe adds a callback for an event.
func (b *Bus) Subscribe(event string, callback func(payload any)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event] = append(b.events[event], callback)
}

// Emit calls every callback subscribed to event, in subscription order.
// Emitting an event without subscribers does nothing.
func (b *Bus) Emit(event string, payload any) {
	b.mu.RLock()
	callbacks := make([]func(any), len(b.events[event]))
	copy(callbacks, b.events[event])
	b.mu.RUnlock()

	for _, callback := range callbacks {
		callback(payload)
	}
}
