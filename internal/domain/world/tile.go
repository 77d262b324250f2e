package world

import "strings"

// OccupantID is an opaque, non-owning reference to a unit. The unit's
// lifetime is managed outside the map.
type OccupantID string

type Occupant struct {
	ID       OccupantID `json:"id"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Blocking bool       `json:"blocking"`
}

func (o Occupant) normalized() Occupant {
	o.ID = OccupantID(strings.TrimSpace(string(o.ID)))
	if o.Width == 0 {
		o.Width = 1
	}
	if o.Height == 0 {
		o.Height = 1
	}
	return o
}

func (o Occupant) validate() error {
	if o.ID == "" || o.Width < 1 || o.Height < 1 {
		return ErrInvalidOccupant
	}
	return nil
}

// Tile is a single, possibly multi-cell, terrain unit. Values handed out
// by a Tilemap are copies taken under the map's lock; mutating state only
// changes through the owning Tilemap.
type Tile struct {
	id        int
	rect      Rect
	terrain   TerrainConfig
	resource  *ResourceConfig
	depleted  *TerrainConfig
	remaining int
	occupant  *Occupant
}

func newTile(id int, rect Rect, typeID int, reg *Registry) (*Tile, error) {
	if rect.Width < 1 || rect.Height < 1 {
		return nil, configErr("size", "width and height must be at least 1, got %dx%d", rect.Width, rect.Height)
	}
	tt, ok := reg.Lookup(typeID)
	if !ok {
		return nil, configErr("type_id", "unknown type id %d", typeID)
	}
	t := &Tile{
		id:      id,
		rect:    rect,
		terrain: tt.Terrain,
	}
	if tt.Resource != nil {
		res := *tt.Resource
		if res.OilYield < 0 || res.LumberYield < 0 || res.GoldYield < 0 {
			return nil, configErr("resource", "yields must be non-negative")
		}
		t.resource = &res
		t.remaining = res.InitialResources()
		if name := strings.TrimSpace(res.DepletedTerrain); name != "" {
			dt, ok := reg.LookupName(name)
			if !ok {
				return nil, configErr("resource.depleted_terrain", "unknown terrain %q", name)
			}
			depleted := dt.Terrain
			t.depleted = &depleted
		}
	}
	return t, nil
}

func (t Tile) ID() int       { return t.id }
func (t Tile) X() int        { return t.rect.X }
func (t Tile) Y() int        { return t.rect.Y }
func (t Tile) Width() int    { return t.rect.Width }
func (t Tile) Height() int   { return t.rect.Height }
func (t Tile) Anchor() Point { return t.rect.Anchor() }
func (t Tile) Rect() Rect    { return t.rect }

func (t Tile) Covers(p Point) bool {
	return t.rect.Contains(p)
}

// TypeID is the immutable base terrain type.
func (t Tile) TypeID() int { return t.terrain.TypeID }

func (t Tile) Name() string { return t.terrain.Name }

// EffectiveTypeID is the terrain currently in force: the depleted
// terrain once the resource runs out, the base terrain otherwise.
func (t Tile) EffectiveTypeID() int { return t.effective().TypeID }

func (t Tile) EffectiveName() string { return t.effective().Name }

func (t Tile) OilYield() int    { return t.yield(ResourceOil) }
func (t Tile) LumberYield() int { return t.yield(ResourceLumber) }
func (t Tile) GoldYield() int   { return t.yield(ResourceGold) }

func (t Tile) yield(kind ResourceKind) int {
	if t.resource == nil {
		return 0
	}
	return t.resource.Yield(kind)
}

func (t Tile) ResourceKind() ResourceKind {
	if t.resource == nil || !t.resource.Harvestable {
		return ResourceNone
	}
	return t.resource.Kind
}

func (t Tile) Resources() int { return t.remaining }

func (t Tile) harvestableAtCreation() bool {
	return t.resource != nil && t.resource.Harvestable
}

func (t Tile) IsDepleted() bool {
	return t.harvestableAtCreation() && t.remaining == 0
}

func (t Tile) IsHarvestable() bool {
	return t.harvestableAtCreation() && t.remaining > 0
}

func (t Tile) IsWalkable() bool {
	if !t.effective().Walkable {
		return false
	}
	return t.occupant == nil || !t.occupant.Blocking
}

func (t Tile) IsBuildable() bool {
	return t.effective().Buildable && t.occupant == nil
}

func (t Tile) IsAttackable() bool {
	return t.occupant != nil && t.effective().Attackable
}

func (t Tile) HasOccupant() bool { return t.occupant != nil }

func (t Tile) Occupant() (OccupantID, bool) {
	if t.occupant == nil {
		return "", false
	}
	return t.occupant.ID, true
}

func (t Tile) effective() TerrainConfig {
	if t.depleted != nil && t.IsDepleted() {
		return *t.depleted
	}
	return t.terrain
}

func (t *Tile) setOccupant(o *Occupant) { t.occupant = o }

func (t *Tile) clearOccupant() { t.occupant = nil }

func (t *Tile) take(amount int) int {
	if amount > t.remaining {
		amount = t.remaining
	}
	t.remaining -= amount
	return amount
}
