package memory

import (
	"context"

	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

type SnapshotRepo struct {
	store *Store
}

func NewSnapshotRepo(store *Store) SnapshotRepo {
	return SnapshotRepo{store: store}
}

func (r SnapshotRepo) Save(_ context.Context, snap world.MapSnapshot) error {
	r.store.dataMu.Lock()
	defer r.store.dataMu.Unlock()
	for _, existing := range r.store.snapshots[snap.MapID] {
		if existing.Revision == snap.Revision {
			return nil
		}
	}
	r.store.snapshots[snap.MapID] = append(r.store.snapshots[snap.MapID], cloneSnapshot(snap))
	return nil
}

// Latest returns the stored snapshot with the highest revision.
func (r SnapshotRepo) Latest(_ context.Context, mapID string) (world.MapSnapshot, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()
	list := r.store.snapshots[mapID]
	if len(list) == 0 {
		return world.MapSnapshot{}, ports.ErrNotFound
	}
	best := list[0]
	for _, s := range list[1:] {
		if s.Revision > best.Revision {
			best = s
		}
	}
	return cloneSnapshot(best), nil
}

func cloneSnapshot(s world.MapSnapshot) world.MapSnapshot {
	s.Tiles = append([]world.TileState(nil), s.Tiles...)
	s.Occupants = append([]world.OccupantState(nil), s.Occupants...)
	return s
}
