package memory

import (
	"context"
	"sort"

	"tilecore/internal/app/ports"
)

type MapStore struct {
	store *Store
}

func NewMapStore(store *Store) MapStore {
	return MapStore{store: store}
}

func (r MapStore) Get(_ context.Context, mapID string) (ports.MapInstance, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()
	inst, ok := r.store.maps[mapID]
	if !ok {
		return ports.MapInstance{}, ports.ErrNotFound
	}
	return inst, nil
}

func (r MapStore) Put(_ context.Context, inst ports.MapInstance) error {
	r.store.dataMu.Lock()
	defer r.store.dataMu.Unlock()
	if _, exists := r.store.maps[inst.Info.ID]; exists {
		return ports.ErrConflict
	}
	r.store.maps[inst.Info.ID] = inst
	return nil
}

func (r MapStore) List(_ context.Context) ([]ports.MapInfo, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()
	out := make([]ports.MapInfo, 0, len(r.store.maps))
	for _, inst := range r.store.maps {
		out = append(out, inst.Info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
