package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid map request")

// ErrDefinitionNotFound wraps ports.ErrNotFound so callers can tell a
// missing definition apart from a missing live map.
var ErrDefinitionNotFound = fmt.Errorf("map definition %w", ports.ErrNotFound)

// UseCase manages live map instances. Archive is optional and receives a
// copy of every saved snapshot.
type UseCase struct {
	Definitions ports.DefinitionSource
	Terrain     ports.TerrainCatalog
	Store       ports.MapStore
	Snapshots   ports.SnapshotRepository
	Archive     ports.SnapshotRepository
	TxManager   ports.TxManager
	Now         func() time.Time
	NewID       func() string
}

// Load builds a live map instance from a definition. With Restore set,
// the latest stored snapshot of MapID is applied on top; a map that has
// never been snapshotted starts fresh.
func (u UseCase) Load(ctx context.Context, req LoadRequest) (Summary, error) {
	req.MapID = strings.TrimSpace(req.MapID)
	req.DefinitionID = strings.TrimSpace(req.DefinitionID)
	if req.DefinitionID == "" || u.Definitions == nil || u.Terrain == nil || u.Store == nil {
		return Summary{}, ErrInvalidRequest
	}
	if req.Restore && (req.MapID == "" || u.Snapshots == nil) {
		return Summary{}, ErrInvalidRequest
	}
	if req.MapID == "" {
		req.MapID = u.newID()
	}
	if _, err := u.Store.Get(ctx, req.MapID); err == nil {
		return Summary{}, ports.ErrConflict
	} else if !errors.Is(err, ports.ErrNotFound) {
		return Summary{}, err
	}

	def, err := u.Definitions.Definition(ctx, req.DefinitionID)
	if errors.Is(err, ports.ErrNotFound) {
		return Summary{}, fmt.Errorf("%w: %q", ErrDefinitionNotFound, req.DefinitionID)
	}
	if err != nil {
		return Summary{}, err
	}
	reg, err := u.Terrain.Registry(ctx)
	if err != nil {
		return Summary{}, err
	}
	tm, err := def.Build(reg)
	if err != nil {
		return Summary{}, err
	}

	restored := false
	if req.Restore {
		snap, err := u.Snapshots.Latest(ctx, req.MapID)
		switch {
		case errors.Is(err, ports.ErrNotFound):
		case err != nil:
			return Summary{}, err
		default:
			if snap.DefinitionID != "" && snap.DefinitionID != def.ID {
				return Summary{}, &world.ConfigurationError{
					Field:  "snapshot.definition_id",
					Reason: fmt.Sprintf("snapshot was taken from %q, not %q", snap.DefinitionID, def.ID),
				}
			}
			if err := tm.Restore(snap); err != nil {
				return Summary{}, err
			}
			restored = true
		}
	} else if u.Snapshots != nil {
		// Stored snapshots are keyed by revision; a fresh map under a
		// reused id continues after them.
		snap, err := u.Snapshots.Latest(ctx, req.MapID)
		switch {
		case errors.Is(err, ports.ErrNotFound):
		case err != nil:
			return Summary{}, err
		default:
			tm.AdvanceRevision(snap.Revision)
		}
	}

	name := def.Name
	if name == "" {
		name = def.ID
	}
	inst := ports.MapInstance{
		Info: ports.MapInfo{
			ID:           req.MapID,
			DefinitionID: def.ID,
			Name:         name,
			CreatedAt:    u.now(),
		},
		Map: tm,
	}
	if err := u.Store.Put(ctx, inst); err != nil {
		return Summary{}, err
	}
	out := summarize(inst)
	out.Restored = restored
	return out, nil
}

func (u UseCase) Describe(ctx context.Context, mapID string) (Summary, error) {
	mapID = strings.TrimSpace(mapID)
	if mapID == "" || u.Store == nil {
		return Summary{}, ErrInvalidRequest
	}
	inst, err := u.Store.Get(ctx, mapID)
	if err != nil {
		return Summary{}, err
	}
	return summarize(inst), nil
}

func (u UseCase) List(ctx context.Context) ([]Summary, error) {
	if u.Store == nil {
		return nil, ErrInvalidRequest
	}
	infos, err := u.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(infos))
	for _, info := range infos {
		inst, err := u.Store.Get(ctx, info.ID)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(inst))
	}
	return out, nil
}

// SaveSnapshot persists the map's current state. The read is a single
// consistent view, so concurrent mutations land either fully before or
// fully after it.
func (u UseCase) SaveSnapshot(ctx context.Context, mapID string) (SnapshotResult, error) {
	mapID = strings.TrimSpace(mapID)
	if mapID == "" || u.Store == nil || u.Snapshots == nil || u.TxManager == nil {
		return SnapshotResult{}, ErrInvalidRequest
	}
	inst, err := u.Store.Get(ctx, mapID)
	if err != nil {
		return SnapshotResult{}, err
	}
	snap := inst.Map.Snapshot()
	snap.MapID = inst.Info.ID
	snap.DefinitionID = inst.Info.DefinitionID
	snap.TakenAt = u.now()

	if err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		return u.Snapshots.Save(txCtx, snap)
	}); err != nil {
		return SnapshotResult{}, err
	}
	out := SnapshotResult{
		MapID:     snap.MapID,
		Revision:  snap.Revision,
		Tiles:     len(snap.Tiles),
		Occupants: len(snap.Occupants),
		TakenAt:   snap.TakenAt,
	}
	// The primary save has committed; an archive failure is reported in
	// the result instead of failing the call.
	if u.Archive != nil {
		if err := u.Archive.Save(ctx, snap); err != nil {
			out.ArchiveError = fmt.Sprintf("archive snapshot: %v", err)
		} else {
			out.Archived = true
		}
	}
	return out, nil
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now().UTC()
	}
	return u.Now().UTC()
}

func (u UseCase) newID() string {
	if u.NewID == nil {
		return uuid.NewString()
	}
	return u.NewID()
}

func summarize(inst ports.MapInstance) Summary {
	return Summary{
		MapID:         inst.Info.ID,
		DefinitionID:  inst.Info.DefinitionID,
		Name:          inst.Info.Name,
		Width:         inst.Map.Width(),
		Height:        inst.Map.Height(),
		TileCount:     inst.Map.TileCount(),
		OccupantCount: inst.Map.OccupantCount(),
		Revision:      inst.Map.Revision(),
		CreatedAt:     inst.Info.CreatedAt,
	}
}
