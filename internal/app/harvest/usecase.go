package harvest

import (
	"context"
	"errors"
	"strings"

	"tilecore/internal/app/ports"
	"tilecore/internal/app/shared/outcome"
	"tilecore/internal/app/shared/tileview"
	"tilecore/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid harvest request")

type Request struct {
	MapID  string `json:"-"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Amount int    `json:"amount"`
}

type Response struct {
	Harvested int           `json:"harvested"`
	Remaining int           `json:"remaining"`
	Depleted  bool          `json:"depleted"`
	Kind      string        `json:"kind"`
	Tile      tileview.Tile `json:"tile"`
}

type UseCase struct {
	Maps    ports.MapStore
	Metrics ports.OperationMetrics
}

// Execute takes up to Amount units from the tile at (X, Y). Harvested may
// be less than Amount when the tile runs out.
func (u UseCase) Execute(ctx context.Context, req Request) (resp Response, err error) {
	defer func() { outcome.Record(u.Metrics, "harvest", err) }()

	mapID := strings.TrimSpace(req.MapID)
	if mapID == "" || u.Maps == nil {
		return Response{}, ErrInvalidRequest
	}
	inst, err := u.Maps.Get(ctx, mapID)
	if err != nil {
		return Response{}, err
	}
	n, t, err := inst.Map.HarvestTile(world.Point{X: req.X, Y: req.Y}, req.Amount)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Harvested: n,
		Remaining: t.Resources(),
		Depleted:  t.IsDepleted(),
		Kind:      string(t.ResourceKind()),
		Tile:      tileview.Of(t),
	}, nil
}
