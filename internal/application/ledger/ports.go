package ledger

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/event"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para cada operación del
// ledger y reintenta un número acotado de veces ante conflictos de
// serialización; agotados los reintentos devuelve domain.ErrConflict.
// fn puede ejecutarse más de una vez: debe recalcular todo desde las lecturas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		levelRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// EventPublisher despacha eventos de dominio después del commit.
// Un error de publicación no revierte la transacción ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.Event) error
}
