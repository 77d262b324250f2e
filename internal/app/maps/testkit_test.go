package maps

import (
	"context"
	"sort"
	"sync"

	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

func demoRegistry() *world.Registry {
	reg, err := world.NewRegistry(
		world.TileType{Terrain: world.TerrainConfig{TypeID: 1, Name: "grass", Walkable: true, Buildable: true, Attackable: true}},
		world.TileType{
			Terrain:  world.TerrainConfig{TypeID: 2, Name: "gold", Walkable: true},
			Resource: &world.ResourceConfig{TypeID: 2, Name: "gold", Harvestable: true, Kind: world.ResourceGold, GoldYield: 10},
		},
	)
	if err != nil {
		panic(err)
	}
	return reg
}

func demoDefinition() world.MapDefinition {
	return world.MapDefinition{
		ID:     "duel",
		Name:   "Duel",
		Width:  3,
		Height: 1,
		Grid:   [][]int{{1, 1, 2}},
	}
}

type fakeDefinitions map[string]world.MapDefinition

func (f fakeDefinitions) Definition(_ context.Context, id string) (world.MapDefinition, error) {
	def, ok := f[id]
	if !ok {
		return world.MapDefinition{}, ports.ErrNotFound
	}
	return def, nil
}

type fakeCatalog struct {
	reg *world.Registry
	err error
}

func (f fakeCatalog) Registry(context.Context) (*world.Registry, error) {
	return f.reg, f.err
}

type fakeStore struct {
	mu    sync.Mutex
	items map[string]ports.MapInstance
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[string]ports.MapInstance{}}
}

func (s *fakeStore) Get(_ context.Context, id string) (ports.MapInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.items[id]
	if !ok {
		return ports.MapInstance{}, ports.ErrNotFound
	}
	return inst, nil
}

func (s *fakeStore) Put(_ context.Context, inst ports.MapInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[inst.Info.ID]; ok {
		return ports.ErrConflict
	}
	s.items[inst.Info.ID] = inst
	return nil
}

func (s *fakeStore) List(context.Context) ([]ports.MapInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.MapInfo, 0, len(s.items))
	for _, inst := range s.items {
		out = append(out, inst.Info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeSnapshots struct {
	saved []world.MapSnapshot
	err   error
}

func (f *fakeSnapshots) Save(_ context.Context, snap world.MapSnapshot) error {
	if f.err != nil {
		return f.err
	}
	for _, prev := range f.saved {
		if prev.MapID == snap.MapID && prev.Revision == snap.Revision {
			return nil
		}
	}
	f.saved = append(f.saved, snap)
	return nil
}

func (f *fakeSnapshots) Latest(_ context.Context, mapID string) (world.MapSnapshot, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].MapID == mapID {
			return f.saved[i], nil
		}
	}
	return world.MapSnapshot{}, ports.ErrNotFound
}

type fakeTxManager struct {
	calls *int
}

func (f fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.calls != nil {
		*f.calls++
	}
	return fn(ctx)
}
