// Package memory implementa los puertos de persistencia en memoria.
// Pensado para pruebas: mismo contrato que los adaptadores de PostgreSQL,
// con transacciones serializadas por un mutex y commit por intercambio de estado.
package memory

import (
	"sync"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// Store contiene todo el estado en memoria. Las lecturas fuera de transacción
// toman RLock; una transacción toma Lock, trabaja sobre un clon y lo
// intercambia al confirmar (descartar el clon equivale a rollback).
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

type state struct {
	items      map[string]*entity.Item
	warehouses map[string]*entity.Warehouse
	levels     map[string]*entity.StockLevel
	movements  []*entity.StockMovement
	boms       map[string]*entity.BillOfMaterials
	orders     map[string]*entity.ProductionOrder
}

func newState() *state {
	return &state{
		items:      make(map[string]*entity.Item),
		warehouses: make(map[string]*entity.Warehouse),
		levels:     make(map[string]*entity.StockLevel),
		boms:       make(map[string]*entity.BillOfMaterials),
		orders:     make(map[string]*entity.ProductionOrder),
	}
}

// clone copia el estado completo. Los movimientos son inmutables una vez
// anexados, pero la copia del slice evita compartir el arreglo de respaldo.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.items {
		cp := *v
		c.items[k] = &cp
	}
	for k, v := range s.warehouses {
		cp := *v
		c.warehouses[k] = &cp
	}
	for k, v := range s.levels {
		cp := *v
		c.levels[k] = &cp
	}
	c.movements = append([]*entity.StockMovement(nil), s.movements...)
	for k, v := range s.boms {
		cp := *v
		cp.Components = append([]entity.BOMComponent(nil), v.Components...)
		c.boms[k] = &cp
	}
	for k, v := range s.orders {
		cp := *v
		cp.Consumptions = append([]entity.Consumption(nil), v.Consumptions...)
		cp.Productions = append([]entity.Production(nil), v.Productions...)
		c.orders[k] = &cp
	}
	return c
}

// levelKey arma la clave compuesta item+bodega+bin.
func levelKey(itemID, warehouseID, binID string) string {
	return itemID + "|" + warehouseID + "|" + binID
}

// session referencia el estado sobre el que opera un repositorio: el clon de
// una transacción (sin bloqueo, el mutex ya está tomado) o el estado vivo del
// Store (con bloqueo por operación).
type session struct {
	s  *Store // nil dentro de una transacción
	st *state // no nil dentro de una transacción
}

func liveSession(s *Store) session { return session{s: s} }
func txSession(st *state) session  { return session{st: st} }

func (v session) read() (*state, func()) {
	if v.st != nil {
		return v.st, func() {}
	}
	v.s.mu.RLock()
	return v.s.st, v.s.mu.RUnlock
}

func (v session) write() (*state, func()) {
	if v.st != nil {
		return v.st, func() {}
	}
	v.s.mu.Lock()
	return v.s.st, v.s.mu.Unlock
}
