package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/guttosm/tradeflow/internal/domain/models"
)

// MemoryTradeStore keeps trades in a map. Records are copied on the way in
// and out so callers never share memory with the store.
type MemoryTradeStore struct {
	mu     sync.RWMutex
	trades map[string]*models.Trade
}

// NewMemoryTradeStore returns an empty in-memory store.
func NewMemoryTradeStore() *MemoryTradeStore {
	return &MemoryTradeStore{trades: make(map[string]*models.Trade)}
}

func (m *MemoryTradeStore) Create(_ context.Context, t *models.Trade) (*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trades[t.ID]; ok {
		return nil, ErrDuplicate
	}
	m.trades[t.ID] = t.Clone()
	return t.Clone(), nil
}

func (m *MemoryTradeStore) Get(_ context.Context, id string) (*models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.trades[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (m *MemoryTradeStore) Update(_ context.Context, t *models.Trade) (*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return updateLocked(m.trades, t)
}

func (m *MemoryTradeStore) List(_ context.Context, filter models.TradeFilter) ([]*models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return listLocked(m.trades, filter), nil
}

// updateLocked applies the optimistic version check shared by the map-based stores.
func updateLocked(trades map[string]*models.Trade, t *models.Trade) (*models.Trade, error) {
	cur, ok := trades[t.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if cur.Version != t.Version {
		return nil, ErrConflict
	}
	next := t.Clone()
	next.Version++
	trades[t.ID] = next
	return next.Clone(), nil
}

func listLocked(trades map[string]*models.Trade, filter models.TradeFilter) []*models.Trade {
	out := make([]*models.Trade, 0, len(trades))
	for _, t := range trades {
		if filter.Match(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
