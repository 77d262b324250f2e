package world

import "fmt"

// MapDefinition is the static terrain layout of a map. Grid holds type
// ids of 1x1 tiles in row-major order, 0 marking void. Tiles lists
// explicit, possibly multi-cell, placements.
type MapDefinition struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Grid   [][]int    `json:"grid,omitempty"`
	Tiles  []TileSpec `json:"tiles,omitempty"`
}

// TileSpecs flattens the grid and the explicit tiles, grid first.
func (d MapDefinition) TileSpecs() ([]TileSpec, error) {
	if len(d.Grid) > 0 && len(d.Grid) != d.Height {
		return nil, configErr("grid", "has %d rows, map height is %d", len(d.Grid), d.Height)
	}
	out := make([]TileSpec, 0, d.Width*len(d.Grid)+len(d.Tiles))
	for y, row := range d.Grid {
		if len(row) != d.Width {
			return nil, configErr(fmt.Sprintf("grid[%d]", y), "has %d columns, map width is %d", len(row), d.Width)
		}
		for x, typeID := range row {
			if typeID == 0 {
				continue
			}
			out = append(out, TileSpec{X: x, Y: y, Width: 1, Height: 1, TypeID: typeID})
		}
	}
	return append(out, d.Tiles...), nil
}

func (d MapDefinition) Build(reg *Registry) (*Tilemap, error) {
	specs, err := d.TileSpecs()
	if err != nil {
		return nil, err
	}
	return NewTilemap(d.Width, d.Height, reg, specs)
}
