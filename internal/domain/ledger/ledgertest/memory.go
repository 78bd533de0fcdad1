// Package ledgertest provides in-memory fakes for ledger unit tests.
// Fakes keep the repository contracts (find-or-absent, row identity per
// pair, append-only log) without a database.
package ledgertest

import (
	"context"
	"sync"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/ledger"
)

// TxManager is a pass-through transaction manager for tests.
type TxManager struct{}

// RunInTransaction executes fn directly.
func (TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Checker is a set-backed ExistenceChecker.
type Checker struct {
	mu  sync.Mutex
	ids map[id.ID]bool
}

// NewChecker creates a Checker containing the given IDs.
func NewChecker(ids ...id.ID) *Checker {
	c := &Checker{ids: make(map[id.ID]bool)}
	for _, v := range ids {
		c.ids[v] = true
	}
	return c
}

// Add registers an ID as existing.
func (c *Checker) Add(v id.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[v] = true
}

// Exists implements ledger.ExistenceChecker.
func (c *Checker) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ids[entityID], nil
}

type pairKey struct {
	product   id.ID
	warehouse id.ID
}

// PositionRepo is an in-memory ledger.PositionRepository.
type PositionRepo struct {
	mu        sync.Mutex
	positions map[pairKey]ledger.StockPosition
}

// NewPositionRepo creates an empty PositionRepo.
func NewPositionRepo() *PositionRepo {
	return &PositionRepo{positions: make(map[pairKey]ledger.StockPosition)}
}

// Find implements ledger.PositionRepository.
func (r *PositionRepo) Find(ctx context.Context, productID, warehouseID id.ID) (*ledger.StockPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.positions[pairKey{productID, warehouseID}]; ok {
		cp := p
		return &cp, nil
	}
	return nil, nil
}

// FindForUpdate implements ledger.PositionRepository. In-memory there is
// no row lock; tests exercise single-writer sequences.
func (r *PositionRepo) FindForUpdate(ctx context.Context, productID, warehouseID id.ID) (*ledger.StockPosition, error) {
	return r.Find(ctx, productID, warehouseID)
}

// Upsert implements ledger.PositionRepository.
func (r *PositionRepo) Upsert(ctx context.Context, position *ledger.StockPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	position.Version++
	r.positions[pairKey{position.ProductID, position.WarehouseID}] = *position
	return nil
}

// ListByWarehouse implements ledger.PositionRepository.
func (r *PositionRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID, filter ledger.PositionFilter) ([]ledger.StockPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.StockPosition
	for k, p := range r.positions {
		if k.warehouse != warehouseID {
			continue
		}
		if filter.ExcludeZero && p.Quantity.IsZero() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ListByProduct implements ledger.PositionRepository.
func (r *PositionRepo) ListByProduct(ctx context.Context, productID id.ID) ([]ledger.StockPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.StockPosition
	for k, p := range r.positions {
		if k.product == productID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Count returns the number of distinct position rows.
func (r *PositionRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.positions)
}

// LogRepo is an in-memory ledger.LogRepository.
type LogRepo struct {
	mu      sync.Mutex
	entries []ledger.LogEntry
}

// NewLogRepo creates an empty LogRepo.
func NewLogRepo() *LogRepo {
	return &LogRepo{}
}

// Append implements ledger.LogRepository.
func (r *LogRepo) Append(ctx context.Context, entries ...ledger.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
	return nil
}

// History implements ledger.LogRepository.
func (r *LogRepo) History(ctx context.Context, filter ledger.LogFilter) ([]ledger.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.LogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if filter.ProductID != nil && e.ProductID != *filter.ProductID {
			continue
		}
		if filter.WarehouseID != nil && e.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.ProcessType != nil && e.ProcessType != *filter.ProcessType {
			continue
		}
		if filter.FromDate != nil && e.CreatedAt.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && e.CreatedAt.After(*filter.ToDate) {
			continue
		}
		out = append(out, e)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// SumChanges implements ledger.LogRepository.
func (r *LogRepo) SumChanges(ctx context.Context, productID, warehouseID id.ID) (types.Quantity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum types.Quantity
	for _, e := range r.entries {
		if e.ProductID == productID && e.WarehouseID == warehouseID {
			sum += e.ChangeAmount
		}
	}
	return sum, nil
}

// Entries returns a copy of all appended entries, oldest first.
func (r *LogRepo) Entries() []ledger.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
