package occupancy

import (
	"context"
	"errors"
	"testing"

	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

func TestUseCase_PlaceWithBuildIntent(t *testing.T) {
	metrics := &fakeMetrics{}
	uc := UseCase{Maps: newStore(t), Metrics: metrics}

	resp, err := uc.Place(context.Background(), PlaceRequest{
		MapID: "m", OccupantID: "farm", X: 0, Y: 0, Width: 2, Height: 1, Blocking: true, Intent: "build",
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if resp.Revision != 1 || len(resp.Footprint.Tiles) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	_, err = uc.Place(context.Background(), PlaceRequest{MapID: "m", OccupantID: "tower", X: 2, Y: 0, Intent: "build"})
	if !errors.Is(err, world.ErrNotBuildable) {
		t.Fatalf("expected ErrNotBuildable on gold, got %v", err)
	}
	if metrics.success["place"] != 1 || metrics.rejected["place:not_buildable"] != 1 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestUseCase_PlaceByTileIDAndIntentParsing(t *testing.T) {
	uc := UseCase{Maps: newStore(t)}
	tileID := 2

	resp, err := uc.Place(context.Background(), PlaceRequest{MapID: "m", OccupantID: "miner", TileID: &tileID, Intent: " Move "})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if resp.Footprint.Anchor != (world.Point{X: 2, Y: 0}) {
		t.Fatalf("unexpected anchor: %+v", resp.Footprint.Anchor)
	}
	if _, err := uc.Place(context.Background(), PlaceRequest{MapID: "m", OccupantID: "x", Intent: "fly"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown intent, got %v", err)
	}
	if _, err := uc.Place(context.Background(), PlaceRequest{MapID: "m", OccupantID: "miner", X: 0, Y: 0}); !errors.Is(err, world.ErrAlreadyPlaced) {
		t.Fatalf("expected ErrAlreadyPlaced, got %v", err)
	}
}

func TestUseCase_MoveAndRemove(t *testing.T) {
	metrics := &fakeMetrics{}
	uc := UseCase{Maps: newStore(t), Metrics: metrics}

	if _, err := uc.Place(context.Background(), PlaceRequest{MapID: "m", OccupantID: "scout", X: 0, Y: 0, Blocking: true, Intent: "move"}); err != nil {
		t.Fatalf("place: %v", err)
	}
	resp, err := uc.Move(context.Background(), MoveRequest{MapID: "m", OccupantID: "scout", X: 1, Y: 0, Intent: "move"})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if resp.Footprint.Anchor != (world.Point{X: 1, Y: 0}) || resp.Revision != 2 {
		t.Fatalf("unexpected move response: %+v", resp)
	}

	removed, err := uc.Remove(context.Background(), "m", "scout")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Revision != 3 {
		t.Fatalf("expected revision 3, got %d", removed.Revision)
	}
	if _, err := uc.Remove(context.Background(), "m", "scout"); !errors.Is(err, world.ErrOccupantNotFound) {
		t.Fatalf("expected ErrOccupantNotFound, got %v", err)
	}
	if _, err := uc.Remove(context.Background(), "nope", "scout"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if metrics.failure["remove"] != 1 || metrics.rejected["remove:occupant_not_found"] != 1 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestParseIntent(t *testing.T) {
	for raw, want := range map[string]Intent{"": IntentNone, "none": IntentNone, "BUILD": IntentBuild, "move": IntentMove} {
		got, err := ParseIntent(raw)
		if err != nil || got != want {
			t.Fatalf("ParseIntent(%q) = %q, %v", raw, got, err)
		}
	}
}

// newStore holds map "m": grass at (0,0) and (1,0), gold at (2,0).
func newStore(t *testing.T) mapStore {
	t.Helper()
	reg, err := world.NewRegistry(
		world.TileType{Terrain: world.TerrainConfig{TypeID: 1, Name: "grass", Walkable: true, Buildable: true, Attackable: true}},
		world.TileType{
			Terrain:  world.TerrainConfig{TypeID: 2, Name: "gold", Walkable: true},
			Resource: &world.ResourceConfig{TypeID: 2, Name: "gold", Harvestable: true, Kind: world.ResourceGold, GoldYield: 10},
		},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	tm, err := world.MapDefinition{Width: 3, Height: 1, Grid: [][]int{{1, 1, 2}}}.Build(reg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return mapStore{"m": ports.MapInstance{Info: ports.MapInfo{ID: "m"}, Map: tm}}
}

type mapStore map[string]ports.MapInstance

func (s mapStore) Get(_ context.Context, id string) (ports.MapInstance, error) {
	inst, ok := s[id]
	if !ok {
		return ports.MapInstance{}, ports.ErrNotFound
	}
	return inst, nil
}

func (s mapStore) Put(context.Context, ports.MapInstance) error { return ports.ErrConflict }

func (s mapStore) List(context.Context) ([]ports.MapInfo, error) { return nil, nil }

type fakeMetrics struct {
	success  map[string]int
	rejected map[string]int
	failure  map[string]int
}

func (m *fakeMetrics) init() {
	if m.success == nil {
		m.success, m.rejected, m.failure = map[string]int{}, map[string]int{}, map[string]int{}
	}
}

func (m *fakeMetrics) RecordSuccess(op string) {
	m.init()
	m.success[op]++
}

func (m *fakeMetrics) RecordRejected(op, code string) {
	m.init()
	m.rejected[op+":"+code]++
}

func (m *fakeMetrics) RecordFailure(op string) {
	m.init()
	m.failure[op]++
}
