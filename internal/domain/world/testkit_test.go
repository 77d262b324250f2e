package world

import "testing"

const (
	typeGrass  = 2
	typeWall   = 3
	typeLumber = 4
	typeWater  = 5
	typeGold   = 6
	typeKeep   = 7
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		TileType{Terrain: TerrainConfig{TypeID: typeGrass, Name: "grass", Walkable: true, Buildable: true, Attackable: true}},
		TileType{Terrain: TerrainConfig{TypeID: typeWall, Name: "wall"}},
		TileType{
			Terrain:  TerrainConfig{TypeID: typeLumber, Name: "lumber", Attackable: true},
			Resource: &ResourceConfig{TypeID: typeLumber, Name: "lumber", Harvestable: true, Kind: ResourceLumber, LumberYield: 10, DepletedTerrain: "grass"},
		},
		TileType{Terrain: TerrainConfig{TypeID: typeWater, Name: "water"}},
		TileType{
			Terrain:  TerrainConfig{TypeID: typeGold, Name: "gold", Walkable: true, Attackable: true},
			Resource: &ResourceConfig{TypeID: typeGold, Name: "gold", Harvestable: true, Kind: ResourceGold, GoldYield: 10},
		},
		TileType{Terrain: TerrainConfig{TypeID: typeKeep, Name: "keep", Walkable: true, Buildable: true}},
	)
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}
	return reg
}

func mustTilemap(t *testing.T, width, height int, specs ...TileSpec) *Tilemap {
	t.Helper()
	m, err := NewTilemap(width, height, testRegistry(t), specs)
	if err != nil {
		t.Fatalf("NewTilemap error: %v", err)
	}
	return m
}

func mustTile(t *testing.T, m *Tilemap, x, y int) Tile {
	t.Helper()
	tile, ok, err := m.GetTile(Point{X: x, Y: y})
	if err != nil {
		t.Fatalf("GetTile(%d,%d) error: %v", x, y, err)
	}
	if !ok {
		t.Fatalf("GetTile(%d,%d): expected a tile", x, y)
	}
	return tile
}

func grassRow(width int) []TileSpec {
	out := make([]TileSpec, 0, width)
	for x := 0; x < width; x++ {
		out = append(out, TileSpec{X: x, Y: 0, Width: 1, Height: 1, TypeID: typeGrass})
	}
	return out
}
