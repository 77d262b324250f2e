// Package yamlcatalog loads the terrain registry from a YAML file.
package yamlcatalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"tilecore/internal/domain/world"
)

type File struct {
	Terrain []TerrainEntry `yaml:"terrain"`
}

type TerrainEntry struct {
	TypeID     int            `yaml:"type_id"`
	Name       string         `yaml:"name"`
	Walkable   bool           `yaml:"walkable"`
	Buildable  bool           `yaml:"buildable"`
	Attackable bool           `yaml:"attackable"`
	Resource   *ResourceEntry `yaml:"resource"`
}

type ResourceEntry struct {
	Name            string `yaml:"name"`
	Harvestable     bool   `yaml:"harvestable"`
	Kind            string `yaml:"kind"`
	OilYield        int    `yaml:"oil_yield"`
	LumberYield     int    `yaml:"lumber_yield"`
	GoldYield       int    `yaml:"gold_yield"`
	DepletedTerrain string `yaml:"depleted_terrain"`
}

// Catalog serves a registry loaded once at startup.
type Catalog struct {
	reg *world.Registry
}

func NewCatalog(reg *world.Registry) Catalog {
	return Catalog{reg: reg}
}

func (c Catalog) Registry(context.Context) (*world.Registry, error) {
	if c.reg == nil {
		return nil, &world.ConfigurationError{Field: "terrain", Reason: "catalog not loaded"}
	}
	return c.reg, nil
}

func Load(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	reg, err := Parse(raw)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return NewCatalog(reg), nil
}

// Parse decodes a catalog document. Unknown keys are rejected so a typo
// does not silently drop a terrain flag.
func Parse(raw []byte) (*world.Registry, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, &world.ConfigurationError{Field: "terrain", Reason: err.Error()}
	}
	if len(f.Terrain) == 0 {
		return nil, &world.ConfigurationError{Field: "terrain", Reason: "no terrain types defined"}
	}
	types := make([]world.TileType, 0, len(f.Terrain))
	for _, e := range f.Terrain {
		tt := world.TileType{Terrain: world.TerrainConfig{
			TypeID:     e.TypeID,
			Name:       e.Name,
			Walkable:   e.Walkable,
			Buildable:  e.Buildable,
			Attackable: e.Attackable,
		}}
		if r := e.Resource; r != nil {
			name := r.Name
			if name == "" {
				name = e.Name
			}
			tt.Resource = &world.ResourceConfig{
				TypeID:          e.TypeID,
				Name:            name,
				Harvestable:     r.Harvestable,
				Kind:            world.ResourceKind(r.Kind),
				OilYield:        r.OilYield,
				LumberYield:     r.LumberYield,
				GoldYield:       r.GoldYield,
				DepletedTerrain: r.DepletedTerrain,
			}
		}
		types = append(types, tt)
	}
	return world.NewRegistry(types...)
}
