package occupancy

import (
	"context"
	"errors"
	"strings"

	"tilecore/internal/app/ports"
	"tilecore/internal/app/shared/outcome"
	"tilecore/internal/app/shared/tileview"
	"tilecore/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid occupancy request")

type UseCase struct {
	Maps    ports.MapStore
	Metrics ports.OperationMetrics
}

func (u UseCase) Place(ctx context.Context, req PlaceRequest) (resp Response, err error) {
	defer func() { outcome.Record(u.Metrics, "place", err) }()

	intent, err := ParseIntent(req.Intent)
	if err != nil {
		return Response{}, err
	}
	tm, err := u.tilemap(ctx, req.MapID)
	if err != nil {
		return Response{}, err
	}
	o := world.Occupant{
		ID:       world.OccupantID(strings.TrimSpace(req.OccupantID)),
		Width:    req.Width,
		Height:   req.Height,
		Blocking: req.Blocking,
	}
	if req.TileID != nil {
		err = tm.PlaceOccupantOnTile(*req.TileID, o, intent.Policy())
	} else {
		err = tm.PlaceOccupant(world.Point{X: req.X, Y: req.Y}, o, intent.Policy())
	}
	if err != nil {
		return Response{}, err
	}
	return footprint(tm, o.ID)
}

func (u UseCase) Move(ctx context.Context, req MoveRequest) (resp Response, err error) {
	defer func() { outcome.Record(u.Metrics, "move", err) }()

	intent, err := ParseIntent(req.Intent)
	if err != nil {
		return Response{}, err
	}
	id := world.OccupantID(strings.TrimSpace(req.OccupantID))
	if id == "" {
		return Response{}, ErrInvalidRequest
	}
	tm, err := u.tilemap(ctx, req.MapID)
	if err != nil {
		return Response{}, err
	}
	if err := tm.MoveOccupant(id, world.Point{X: req.X, Y: req.Y}, intent.Policy()); err != nil {
		return Response{}, err
	}
	return footprint(tm, id)
}

func (u UseCase) Remove(ctx context.Context, mapID, occupantID string) (resp RemoveResponse, err error) {
	defer func() { outcome.Record(u.Metrics, "remove", err) }()

	id := world.OccupantID(strings.TrimSpace(occupantID))
	if id == "" {
		return RemoveResponse{}, ErrInvalidRequest
	}
	tm, err := u.tilemap(ctx, mapID)
	if err != nil {
		return RemoveResponse{}, err
	}
	if err := tm.RemoveOccupant(id); err != nil {
		return RemoveResponse{}, err
	}
	return RemoveResponse{OccupantID: string(id), Revision: tm.Revision()}, nil
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

// footprint reads back what was just placed. Another request may have
// removed the occupant in between, which surfaces as not found.
func footprint(tm *world.Tilemap, id world.OccupantID) (Response, error) {
	o, anchor, tiles, err := tm.Footprint(id)
	if err != nil {
		return Response{}, err
	}
	return Response{Footprint: tileview.FootprintOf(o, anchor, tiles), Revision: tm.Revision()}, nil
}
