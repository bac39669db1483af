// Package model provides the base every state holder embeds to publish its changes.
package model

import "github.com/abgdnv/weblarek/internal/event"

// Model gives a state holder a reference to the event bus.
type Model struct {
	events event.Emitter
}

// New binds a model to the emitter it publishes changes on.
func New(events event.Emitter) Model {
	return Model{events: events}
}

// EmitChanges announces that the model changed. A model created without an
// emitter changes silently.
func (m Model) EmitChanges(name string, payload any) {
	if m.events == nil {
		return
	}
	m.events.Emit(name, payload)
}

// Events returns the emitter the model publishes on.
func (m Model) Events() event.Emitter {
	return m.events
}
