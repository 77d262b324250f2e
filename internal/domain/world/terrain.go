package world

import (
	"sort"
	"strconv"
	"strings"
)

type ResourceKind string

const (
	ResourceNone   ResourceKind = ""
	ResourceOil    ResourceKind = "oil"
	ResourceLumber ResourceKind = "lumber"
	ResourceGold   ResourceKind = "gold"
)

func (k ResourceKind) Valid() bool {
	switch k {
	case ResourceOil, ResourceLumber, ResourceGold:
		return true
	default:
		return false
	}
}

// TerrainConfig is the static base-terrain descriptor of a tile type.
type TerrainConfig struct {
	TypeID     int    `json:"type_id"`
	Name       string `json:"name"`
	Walkable   bool   `json:"walkable"`
	Buildable  bool   `json:"buildable"`
	Attackable bool   `json:"attackable"`
}

// ResourceConfig is the resource overlay of a tile type. Kind selects
// which yield seeds the tile's resource counter. DepletedTerrain, when
// set, names the terrain whose flags apply once the counter hits zero.
type ResourceConfig struct {
	TypeID          int          `json:"type_id"`
	Name            string       `json:"name"`
	Harvestable     bool         `json:"harvestable"`
	Kind            ResourceKind `json:"kind,omitempty"`
	OilYield        int          `json:"oil_yield"`
	LumberYield     int          `json:"lumber_yield"`
	GoldYield       int          `json:"gold_yield"`
	DepletedTerrain string       `json:"depleted_terrain,omitempty"`
}

func (r ResourceConfig) Yield(kind ResourceKind) int {
	switch kind {
	case ResourceOil:
		return r.OilYield
	case ResourceLumber:
		return r.LumberYield
	case ResourceGold:
		return r.GoldYield
	default:
		return 0
	}
}

func (r ResourceConfig) InitialResources() int {
	if !r.Harvestable {
		return 0
	}
	return r.Yield(r.Kind)
}

// TileType is one registry entry: base terrain plus an optional resource
// overlay. Tiles refer to it by Terrain.TypeID.
type TileType struct {
	Terrain  TerrainConfig   `json:"terrain"`
	Resource *ResourceConfig `json:"resource,omitempty"`
}

type Registry struct {
	byID   map[int]TileType
	byName map[string]int
}

func NewRegistry(types ...TileType) (*Registry, error) {
	r := &Registry{
		byID:   make(map[int]TileType, len(types)),
		byName: make(map[string]int, len(types)),
	}
	for i, t := range types {
		if err := validateTileType(t); err != nil {
			if ce, ok := err.(*ConfigurationError); ok {
				ce.Field = tileTypeField(i, ce.Field)
			}
			return nil, err
		}
		name := normalizeName(t.Terrain.Name)
		if _, dup := r.byID[t.Terrain.TypeID]; dup {
			return nil, configErr(tileTypeField(i, "terrain.type_id"), "duplicate type id %d", t.Terrain.TypeID)
		}
		if _, dup := r.byName[name]; dup {
			return nil, configErr(tileTypeField(i, "terrain.name"), "duplicate terrain name %q", t.Terrain.Name)
		}
		if t.Resource != nil {
			res := *t.Resource
			t.Resource = &res
		}
		r.byID[t.Terrain.TypeID] = t
		r.byName[name] = t.Terrain.TypeID
	}
	for i, t := range types {
		if t.Resource == nil || strings.TrimSpace(t.Resource.DepletedTerrain) == "" {
			continue
		}
		if _, ok := r.byName[normalizeName(t.Resource.DepletedTerrain)]; !ok {
			return nil, configErr(tileTypeField(i, "resource.depleted_terrain"), "unknown terrain %q", t.Resource.DepletedTerrain)
		}
	}
	return r, nil
}

func validateTileType(t TileType) error {
	if t.Terrain.TypeID < 1 {
		return configErr("terrain.type_id", "must be positive, got %d", t.Terrain.TypeID)
	}
	if strings.TrimSpace(t.Terrain.Name) == "" {
		return configErr("terrain.name", "must not be empty")
	}
	if t.Resource == nil {
		return nil
	}
	res := t.Resource
	if res.OilYield < 0 || res.LumberYield < 0 || res.GoldYield < 0 {
		return configErr("resource", "yields must be non-negative")
	}
	if res.Kind != ResourceNone && !res.Kind.Valid() {
		return configErr("resource.kind", "unknown resource kind %q", res.Kind)
	}
	if res.Harvestable {
		if !res.Kind.Valid() {
			return configErr("resource.kind", "harvestable resource needs a kind")
		}
		if res.Yield(res.Kind) <= 0 {
			return configErr("resource", "harvestable %s resource needs a positive %s yield", res.Kind, res.Kind)
		}
	}
	return nil
}

func tileTypeField(i int, field string) string {
	prefix := "tile_types[" + strconv.Itoa(i) + "]"
	if field == "" {
		return prefix
	}
	return prefix + "." + field
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *Registry) Lookup(typeID int) (TileType, bool) {
	if r == nil {
		return TileType{}, false
	}
	t, ok := r.byID[typeID]
	return t, ok
}

func (r *Registry) LookupName(name string) (TileType, bool) {
	if r == nil {
		return TileType{}, false
	}
	id, ok := r.byName[normalizeName(name)]
	if !ok {
		return TileType{}, false
	}
	return r.byID[id], true
}

// Types returns every registered type ordered by type id.
func (r *Registry) Types() []TileType {
	if r == nil {
		return nil
	}
	out := make([]TileType, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Terrain.TypeID < out[j].Terrain.TypeID })
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byID)
}
