package tileview

import "tilecore/internal/domain/world"

// Tile is the read model of a tile returned by every use case.
type Tile struct {
	ID              int    `json:"id"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	TypeID          int    `json:"type_id"`
	Name            string `json:"name"`
	EffectiveTypeID int    `json:"effective_type_id"`
	EffectiveName   string `json:"effective_name"`
	Walkable        bool   `json:"walkable"`
	Buildable       bool   `json:"buildable"`
	Attackable      bool   `json:"attackable"`
	Harvestable     bool   `json:"harvestable"`
	Depleted        bool   `json:"depleted"`
	ResourceKind    string `json:"resource_kind,omitempty"`
	Resources       int    `json:"resources"`
	OilYield        int    `json:"oil_yield"`
	LumberYield     int    `json:"lumber_yield"`
	GoldYield       int    `json:"gold_yield"`
	Occupant        string `json:"occupant,omitempty"`
}

type Occupant struct {
	ID       string `json:"id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Blocking bool   `json:"blocking"`
}

type Footprint struct {
	Occupant Occupant    `json:"occupant"`
	Anchor   world.Point `json:"anchor"`
	Tiles    []Tile      `json:"tiles"`
}

func Of(t world.Tile) Tile {
	v := Tile{
		ID:              t.ID(),
		X:               t.X(),
		Y:               t.Y(),
		Width:           t.Width(),
		Height:          t.Height(),
		TypeID:          t.TypeID(),
		Name:            t.Name(),
		EffectiveTypeID: t.EffectiveTypeID(),
		EffectiveName:   t.EffectiveName(),
		Walkable:        t.IsWalkable(),
		Buildable:       t.IsBuildable(),
		Attackable:      t.IsAttackable(),
		Harvestable:     t.IsHarvestable(),
		Depleted:        t.IsDepleted(),
		ResourceKind:    string(t.ResourceKind()),
		Resources:       t.Resources(),
		OilYield:        t.OilYield(),
		LumberYield:     t.LumberYield(),
		GoldYield:       t.GoldYield(),
	}
	if id, ok := t.Occupant(); ok {
		v.Occupant = string(id)
	}
	return v
}

func List(tiles []world.Tile) []Tile {
	out := make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		out = append(out, Of(t))
	}
	return out
}

func FootprintOf(o world.Occupant, anchor world.Point, tiles []world.Tile) Footprint {
	return Footprint{
		Occupant: Occupant{ID: string(o.ID), Width: o.Width, Height: o.Height, Blocking: o.Blocking},
		Anchor:   anchor,
		Tiles:    List(tiles),
	}
}
