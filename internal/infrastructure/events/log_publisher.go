// Package events ofrece un publicador de respaldo que solo registra en el log.
// Se usa cuando no hay broker configurado (desarrollo local, pruebas manuales).
package events

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain/event"
)

var _ ledger.EventPublisher = (*LogPublisher)(nil)

// LogPublisher escribe cada evento como una línea estructurada. Nunca falla.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, events ...event.Event) error {
	for _, e := range events {
		log.Info().
			Str("event", e.Name()).
			Str("key", e.Key()).
			Interface("payload", e).
			Msg("evento de dominio")
	}
	return nil
}
