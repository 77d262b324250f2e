package ports

import (
	"context"

	"tilecore/internal/domain/world"
)

type DefinitionSource interface {
	Definition(ctx context.Context, id string) (world.MapDefinition, error)
}

type TerrainCatalog interface {
	Registry(ctx context.Context) (*world.Registry, error)
}
