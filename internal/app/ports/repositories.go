package ports

import (
	"context"
	"time"

	"tilecore/internal/domain/world"
)

type MapInfo struct {
	ID           string
	DefinitionID string
	Name         string
	CreatedAt    time.Time
}

// MapInstance is a live, in-process map. The Tilemap carries its own
// lock, so the instance is shared by pointer between requests.
type MapInstance struct {
	Info MapInfo
	Map  *world.Tilemap
}

type MapStore interface {
	Get(ctx context.Context, mapID string) (MapInstance, error)
	Put(ctx context.Context, inst MapInstance) error
	List(ctx context.Context) ([]MapInfo, error)
}

// SnapshotRepository persists map snapshots keyed by (map id, revision).
// Saving a revision that is already stored is a no-op.
type SnapshotRepository interface {
	Save(ctx context.Context, snap world.MapSnapshot) error
	Latest(ctx context.Context, mapID string) (world.MapSnapshot, error)
}
