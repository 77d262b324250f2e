package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tilecore/internal/adapter/repo/gorm/model"
	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MapSnapshotRepo struct {
	db *gorm.DB
}

func NewMapSnapshotRepo(db *gorm.DB) MapSnapshotRepo {
	return MapSnapshotRepo{db: db}
}

// snapshotPayload is the jsonb body of a map_snapshots row.
type snapshotPayload struct {
	Tiles     []world.TileState     `json:"tiles"`
	Occupants []world.OccupantState `json:"occupants"`
}

func (r MapSnapshotRepo) Save(ctx context.Context, snap world.MapSnapshot) error {
	payload, err := json.Marshal(snapshotPayload{Tiles: snap.Tiles, Occupants: snap.Occupants})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	row := model.MapSnapshot{
		MapID:        snap.MapID,
		DefinitionID: snap.DefinitionID,
		Revision:     int64(snap.Revision),
		Width:        int32(snap.Width),
		Height:       int32(snap.Height),
		Payload:      string(payload),
		TakenAt:      snap.TakenAt,
	}
	db := dbFor(ctx, r.db)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "map_id"}, {Name: "revision"}},
		DoNothing: true,
	}).Create(&row).Error
}

func (r MapSnapshotRepo) Latest(ctx context.Context, mapID string) (world.MapSnapshot, error) {
	var row model.MapSnapshot
	err := dbFor(ctx, r.db).
		Where("map_id = ?", mapID).
		Order("revision DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return world.MapSnapshot{}, ports.ErrNotFound
		}
		return world.MapSnapshot{}, err
	}
	var payload snapshotPayload
	if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
		return world.MapSnapshot{}, fmt.Errorf("decode snapshot %s@%d: %w", row.MapID, row.Revision, err)
	}
	return world.MapSnapshot{
		MapID:        row.MapID,
		DefinitionID: row.DefinitionID,
		Width:        int(row.Width),
		Height:       int(row.Height),
		Revision:     uint64(row.Revision),
		Tiles:        payload.Tiles,
		Occupants:    payload.Occupants,
		TakenAt:      row.TakenAt,
	}, nil
}
