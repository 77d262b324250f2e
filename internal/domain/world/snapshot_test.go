package world

import (
	"errors"
	"testing"
)

func TestSnapshot_RestoreRoundTrip(t *testing.T) {
	def := MapDefinition{
		ID:     "duel",
		Width:  3,
		Height: 2,
		Grid: [][]int{
			{typeGrass, typeGrass, typeGold},
			{typeGrass, typeGrass, 0},
		},
	}
	reg := testRegistry(t)
	src, err := def.Build(reg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := src.PlaceOccupant(Point{X: 0, Y: 0}, Occupant{ID: "barracks", Width: 2, Height: 2, Blocking: true}, RequireBuildable); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := src.Harvest(Point{X: 2, Y: 0}, 4); err != nil {
		t.Fatalf("harvest: %v", err)
	}
	snap := src.Snapshot()
	if snap.Revision != 2 || len(snap.Tiles) != 5 || len(snap.Occupants) != 1 {
		t.Fatalf("unexpected snapshot: rev=%d tiles=%d occupants=%d", snap.Revision, len(snap.Tiles), len(snap.Occupants))
	}

	dst, err := def.Build(reg)
	if err != nil {
		t.Fatalf("build dst: %v", err)
	}
	if err := dst.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if dst.Revision() != 2 {
		t.Fatalf("expected restored revision 2, got %d", dst.Revision())
	}
	if got := mustTile(t, dst, 2, 0).Resources(); got != 6 {
		t.Fatalf("expected 6 gold left, got %d", got)
	}
	if id, ok := mustTile(t, dst, 1, 1).Occupant(); !ok || id != "barracks" {
		t.Fatalf("expected barracks restored, got %q", id)
	}
	if err := dst.RemoveOccupant("barracks"); err != nil {
		t.Fatalf("restored occupant must be indexed: %v", err)
	}
}

func TestSnapshot_RestoreRejectsMismatchWithoutSideEffects(t *testing.T) {
	m := mustTilemap(t, 2, 1, grassRow(2)...)
	if err := m.PlaceOccupant(Point{X: 0, Y: 0}, Occupant{ID: "u1"}, AllowAny); err != nil {
		t.Fatalf("place: %v", err)
	}
	good := m.Snapshot()

	bad := good
	bad.Tiles = append([]TileState(nil), good.Tiles...)
	bad.Tiles[1].TypeID = typeWall
	bad.Tiles[1].Occupant = ""
	bad.Occupants = nil
	if err := m.Restore(bad); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}

	orphan := good
	orphan.Occupants = nil
	if err := m.Restore(orphan); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for occupant without footprint, got %v", err)
	}

	if id, ok := mustTile(t, m, 0, 0).Occupant(); !ok || id != "u1" {
		t.Fatalf("failed restore must not touch state, got %q", id)
	}

	resized := good
	resized.Width = 5
	if err := m.Restore(resized); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for size mismatch, got %v", err)
	}
}

func TestSnapshot_RestoreRejectsFootprintOverVoid(t *testing.T) {
	def := MapDefinition{
		ID:     "duel",
		Width:  3,
		Height: 2,
		Grid: [][]int{
			{typeGrass, typeGrass, typeGold},
			{typeGrass, typeGrass, 0},
		},
	}
	reg := testRegistry(t)
	src, err := def.Build(reg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := src.PlaceOccupant(Point{X: 2, Y: 0}, Occupant{ID: "miner"}, AllowAny); err != nil {
		t.Fatalf("place: %v", err)
	}
	snap := src.Snapshot()
	snap.Occupants = append([]OccupantState(nil), snap.Occupants...)
	snap.Occupants[0].Occupant.Height = 2

	dst, err := def.Build(reg)
	if err != nil {
		t.Fatalf("build dst: %v", err)
	}
	if err := dst.Restore(snap); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for footprint over void, got %v", err)
	}
	if _, ok := mustTile(t, dst, 2, 0).Occupant(); ok || dst.OccupantCount() != 0 {
		t.Fatalf("failed restore must not touch state")
	}
}

func TestMapDefinition_GridAndExplicitTiles(t *testing.T) {
	def := MapDefinition{
		Width:  4,
		Height: 2,
		Grid: [][]int{
			{typeGrass, 0, 0, typeWater},
			{typeGrass, 0, 0, typeWater},
		},
		Tiles: []TileSpec{{X: 1, Y: 0, Width: 2, Height: 2, TypeID: typeGold}},
	}
	m, err := def.Build(testRegistry(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if m.TileCount() != 5 {
		t.Fatalf("expected 5 tiles, got %d", m.TileCount())
	}
	gold := mustTile(t, m, 2, 1)
	if gold.ID() != 4 || gold.Width() != 2 {
		t.Fatalf("explicit tiles follow grid tiles in id order, got id=%d", gold.ID())
	}

	bad := MapDefinition{Width: 2, Height: 1, Grid: [][]int{{typeGrass}}}
	if _, err := bad.Build(testRegistry(t)); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for ragged grid, got %v", err)
	}
}
