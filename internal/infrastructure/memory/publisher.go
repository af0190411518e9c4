package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain/event"
)

var _ ledger.EventPublisher = (*EventRecorder)(nil)

// EventRecorder guarda los eventos publicados para inspección en pruebas.
type EventRecorder struct {
	mu     sync.Mutex
	events []event.Event
	// Err fuerza el fallo de Publish (para probar que publicar no revierte).
	Err error
}

// NewEventRecorder construye un publicador que solo registra.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Publish(_ context.Context, events ...event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, events...)
	return nil
}

// Events devuelve una copia de los eventos registrados.
func (r *EventRecorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

// ByName filtra los eventos registrados por nombre.
func (r *EventRecorder) ByName(name string) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, e := range r.events {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}
