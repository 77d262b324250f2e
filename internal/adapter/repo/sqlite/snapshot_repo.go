package sqliterepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) SnapshotRepo {
	return SnapshotRepo{db: db}
}

type snapshotPayload struct {
	Tiles     []world.TileState     `json:"tiles"`
	Occupants []world.OccupantState `json:"occupants"`
}

func (r SnapshotRepo) Save(ctx context.Context, snap world.MapSnapshot) error {
	payload, err := json.Marshal(snapshotPayload{Tiles: snap.Tiles, Occupants: snap.Occupants})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = r.db.queryer(ctx).ExecContext(ctx, `
		INSERT INTO map_snapshots (map_id, revision, definition_id, width, height, payload, taken_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (map_id, revision) DO NOTHING
	`, snap.MapID, int64(snap.Revision), snap.DefinitionID, snap.Width, snap.Height, string(payload), snap.TakenAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot %s@%d: %w", snap.MapID, snap.Revision, err)
	}
	return nil
}

func (r SnapshotRepo) Latest(ctx context.Context, mapID string) (world.MapSnapshot, error) {
	var (
		snap     world.MapSnapshot
		revision int64
		payload  string
		takenAt  string
	)
	err := r.db.queryer(ctx).QueryRowContext(ctx, `
		SELECT map_id, revision, definition_id, width, height, payload, taken_at
		FROM map_snapshots
		WHERE map_id = ?
		ORDER BY revision DESC
		LIMIT 1
	`, mapID).Scan(&snap.MapID, &revision, &snap.DefinitionID, &snap.Width, &snap.Height, &payload, &takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return world.MapSnapshot{}, ports.ErrNotFound
	}
	if err != nil {
		return world.MapSnapshot{}, err
	}
	var body snapshotPayload
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return world.MapSnapshot{}, fmt.Errorf("decode snapshot %s@%d: %w", mapID, revision, err)
	}
	snap.Revision = uint64(revision)
	snap.Tiles = body.Tiles
	snap.Occupants = body.Occupants
	if snap.TakenAt, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
		return world.MapSnapshot{}, fmt.Errorf("decode snapshot time: %w", err)
	}
	return snap, nil
}
