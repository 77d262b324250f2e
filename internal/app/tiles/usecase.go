package tiles

import (
	"context"
	"errors"
	"strings"

	"tilecore/internal/app/ports"
	"tilecore/internal/app/shared/tileview"
	"tilecore/internal/domain/world"
)

// MaxRegionCells bounds a single region read.
const MaxRegionCells = 64 * 64

var ErrInvalidRequest = errors.New("invalid tile request")

type UseCase struct {
	Maps ports.MapStore
}

// Get returns the tile covering p. A void cell is reported as a
// CellError wrapping world.ErrNoTile.
func (u UseCase) Get(ctx context.Context, mapID string, p world.Point) (tileview.Tile, error) {
	tm, err := u.tilemap(ctx, mapID)
	if err != nil {
		return tileview.Tile{}, err
	}
	t, ok, err := tm.GetTile(p)
	if err != nil {
		return tileview.Tile{}, err
	}
	if !ok {
		return tileview.Tile{}, &world.CellError{Pos: p, Err: world.ErrNoTile}
	}
	return tileview.Of(t), nil
}

func (u UseCase) ByID(ctx context.Context, mapID string, tileID int) (tileview.Tile, error) {
	tm, err := u.tilemap(ctx, mapID)
	if err != nil {
		return tileview.Tile{}, err
	}
	t, err := tm.TileByID(tileID)
	if err != nil {
		return tileview.Tile{}, err
	}
	return tileview.Of(t), nil
}

func (u UseCase) Region(ctx context.Context, mapID string, r world.Rect) ([]tileview.Tile, error) {
	if r.Width < 1 || r.Height < 1 || r.Width*r.Height > MaxRegionCells {
		return nil, ErrInvalidRequest
	}
	tm, err := u.tilemap(ctx, mapID)
	if err != nil {
		return nil, err
	}
	tiles, err := tm.Region(r)
	if err != nil {
		return nil, err
	}
	return tileview.List(tiles), nil
}

func (u UseCase) Footprint(ctx context.Context, mapID, occupantID string) (tileview.Footprint, error) {
	occupantID = strings.TrimSpace(occupantID)
	if occupantID == "" {
		return tileview.Footprint{}, ErrInvalidRequest
	}
	tm, err := u.tilemap(ctx, mapID)
	if err != nil {
		return tileview.Footprint{}, err
	}
	o, anchor, tiles, err := tm.Footprint(world.OccupantID(occupantID))
	if err != nil {
		return tileview.Footprint{}, err
	}
	return tileview.FootprintOf(o, anchor, tiles), nil
}

func (u UseCase) tilemap(ctx context.Context, mapID string) (*world.Tilemap, error) {
	mapID = strings.TrimSpace(mapID)
	if mapID == "" || u.Maps == nil {
		return nil, ErrInvalidRequest
	}
	inst, err := u.Maps.Get(ctx, mapID)
	if err != nil {
		return nil, err
	}
	return inst.Map, nil
}
