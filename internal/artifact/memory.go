package artifact

import (
	"context"
	"sort"
	"sync"

	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// MemoryStore is an in-memory Store used in tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	tree   map[string]*TreeBundle
	neural map[string]*NeuralBundle
}

// NewMemoryStore creates an empty in-memory artifact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tree:   make(map[string]*TreeBundle),
		neural: make(map[string]*NeuralBundle),
	}
}

func (m *MemoryStore) SaveTree(_ context.Context, symbol string, bundle *TreeBundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree[symbol] = bundle
	return nil
}

func (m *MemoryStore) GetTree(_ context.Context, symbol string) (*TreeBundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bundle, ok := m.tree[symbol]
	if !ok {
		return nil, apperrors.NewModelError(string(models.ModelKindTree), symbol, "load", apperrors.ErrModelNotFound)
	}
	return bundle, nil
}

func (m *MemoryStore) SaveNeural(_ context.Context, symbol string, bundle *NeuralBundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.neural[symbol] = bundle
	return nil
}

func (m *MemoryStore) GetNeural(_ context.Context, symbol string) (*NeuralBundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bundle, ok := m.neural[symbol]
	if !ok {
		return nil, apperrors.NewModelError(string(models.ModelKindNeural), symbol, "load", apperrors.ErrModelNotFound)
	}
	return bundle, nil
}

func (m *MemoryStore) Exists(_ context.Context, symbol string, kind models.ModelKind) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch kind {
	case models.ModelKindTree:
		_, ok := m.tree[symbol]
		return ok, nil
	case models.ModelKindNeural:
		_, ok := m.neural[symbol]
		return ok, nil
	}
	return false, nil
}

func (m *MemoryStore) List(_ context.Context) ([]models.ArtifactInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var infos []models.ArtifactInfo
	for symbol, b := range m.tree {
		infos = append(infos, models.ArtifactInfo{Symbol: symbol, Kind: models.ModelKindTree, TrainedAt: b.TrainedAt})
	}
	for symbol, b := range m.neural {
		infos = append(infos, models.ArtifactInfo{Symbol: symbol, Kind: models.ModelKindNeural, TrainedAt: b.TrainedAt})
	}
	sort.SliceStable(infos, func(a, b int) bool {
		return infos[a].TrainedAt.After(infos[b].TrainedAt)
	})
	return infos, nil
}

func (m *MemoryStore) Delete(_ context.Context, symbol string, kind models.ModelKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case models.ModelKindTree:
		delete(m.tree, symbol)
	case models.ModelKindNeural:
		delete(m.neural, symbol)
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
