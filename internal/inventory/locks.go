package inventory

import (
	"sync"

	"github.com/google/uuid"
)

type rowKey struct {
	sku         string
	warehouseID uuid.UUID
}

// rowLocks hands out one mutex per (sku, warehouse) pair so mutations on the
// same row serialize while distinct rows proceed in parallel. Locks are never
// evicted; the row space is bounded by the catalog.
type rowLocks struct {
	mu    sync.Mutex
	locks map[rowKey]*sync.Mutex
}

func newRowLocks() *rowLocks {
	return &rowLocks{locks: make(map[rowKey]*sync.Mutex)}
}

func (r *rowLocks) lock(sku string, warehouseID uuid.UUID) func() {
	key := rowKey{sku: sku, warehouseID: warehouseID}

	r.mu.Lock()
	m, ok := r.locks[key]
	if !ok {
		m = &sync.Mutex{}
		r.locks[key] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
