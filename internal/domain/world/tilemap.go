package world

import (
	"fmt"
	"sort"
	"sync"
)

const voidCell = -1

// PlacementPolicy validates one target tile before an occupant is placed.
// Different actions check different predicates, so the caller picks it.
type PlacementPolicy func(t Tile) error

func AllowAny(Tile) error { return nil }

func RequireWalkable(t Tile) error {
	if !t.IsWalkable() {
		return ErrNotWalkable
	}
	return nil
}

func RequireBuildable(t Tile) error {
	if !t.IsBuildable() {
		return ErrNotBuildable
	}
	return nil
}

// Tilemap owns every Tile of a map instance. Mutations run under an
// exclusive lock; reads take the shared lock and return copies, so a
// multi-cell placement or removal is seen whole or not at all.
type Tilemap struct {
	mu        sync.RWMutex
	width     int
	height    int
	tiles     []*Tile
	cells     []int
	occupancy *occupancyIndex
	revision  uint64
}

type TileSpec struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	TypeID int `json:"type_id"`
}

// NewTilemap builds a map and its tiles in one step. Tile ids follow the
// order of specs. Cells no spec covers are void.
func NewTilemap(width, height int, reg *Registry, specs []TileSpec) (*Tilemap, error) {
	if width < 1 || height < 1 {
		return nil, configErr("size", "map must be at least 1x1, got %dx%d", width, height)
	}
	if reg == nil {
		return nil, configErr("registry", "terrain registry is required")
	}
	m := &Tilemap{
		width:     width,
		height:    height,
		tiles:     make([]*Tile, 0, len(specs)),
		cells:     make([]int, width*height),
		occupancy: newOccupancyIndex(),
	}
	for i := range m.cells {
		m.cells[i] = voidCell
	}
	for i, spec := range specs {
		field := fmt.Sprintf("tiles[%d]", i)
		rect := Rect{X: spec.X, Y: spec.Y, Width: spec.Width, Height: spec.Height}
		t, err := newTile(len(m.tiles), rect, spec.TypeID, reg)
		if err != nil {
			if ce, ok := err.(*ConfigurationError); ok {
				ce.Field = field + "." + ce.Field
			}
			return nil, err
		}
		if !m.containsRect(rect) {
			return nil, configErr(field, "footprint %dx%d at (%d,%d) exceeds %dx%d map", rect.Width, rect.Height, rect.X, rect.Y, width, height)
		}
		for _, p := range rect.Cells() {
			idx := m.index(p)
			if other := m.cells[idx]; other != voidCell {
				return nil, configErr(field, "cell (%d,%d) already covered by tile %d", p.X, p.Y, other)
			}
			m.cells[idx] = t.id
		}
		m.tiles = append(m.tiles, t)
	}
	return m, nil
}

func (m *Tilemap) Width() int  { return m.width }
func (m *Tilemap) Height() int { return m.height }

func (m *Tilemap) TileCount() int {
	return len(m.tiles)
}

// Revision increases by one on every successful mutation.
func (m *Tilemap) Revision() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// AdvanceRevision raises the revision to rev if it is lower.
func (m *Tilemap) AdvanceRevision(rev uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rev > m.revision {
		m.revision = rev
	}
}

func (m *Tilemap) OccupantCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.occupancy.len()
}

func (m *Tilemap) InBounds(p Point) bool {
	return p.X >= 0 && p.X < m.width && p.Y >= 0 && p.Y < m.height
}

func (m *Tilemap) containsRect(r Rect) bool {
	if r.Empty() {
		return false
	}
	return m.InBounds(r.Anchor()) && m.InBounds(Point{X: r.X + r.Width - 1, Y: r.Y + r.Height - 1})
}

// checkBounds reports the first corner of r that falls outside the map.
func (m *Tilemap) checkBounds(r Rect) error {
	for _, p := range []Point{r.Anchor(), {X: r.X + r.Width - 1, Y: r.Y + r.Height - 1}} {
		if !m.InBounds(p) {
			return &OutOfBoundsError{Pos: p}
		}
	}
	return nil
}

func (m *Tilemap) index(p Point) int {
	return p.Y*m.width + p.X
}

// GetTile returns the tile whose footprint covers p. The boolean is false
// for a void cell; a coordinate outside the map is an OutOfBoundsError.
func (m *Tilemap) GetTile(p Point) (Tile, bool, error) {
	if !m.InBounds(p) {
		return Tile{}, false, &OutOfBoundsError{Pos: p}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t := m.tileAtLocked(p)
	if t == nil {
		return Tile{}, false, nil
	}
	return *t, true, nil
}

func (m *Tilemap) TileByID(id int) (Tile, error) {
	if id < 0 || id >= len(m.tiles) {
		return Tile{}, ErrTileNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.tiles[id], nil
}

// Region returns every tile intersecting r, ordered by id, read in one
// consistent view.
func (m *Tilemap) Region(r Rect) ([]Tile, error) {
	if r.Empty() {
		return nil, nil
	}
	if err := m.checkBounds(r); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.tileIDsLocked(r)
	out := make([]Tile, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.tiles[id])
	}
	return out, nil
}

// Footprint reports the occupant as registered and the tiles it holds.
func (m *Tilemap) Footprint(id OccupantID) (Occupant, Point, []Tile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.occupancy.lookup(id)
	if !ok {
		return Occupant{}, Point{}, nil, ErrOccupantNotFound
	}
	out := make([]Tile, 0, len(e.tileIDs))
	for _, tid := range e.tileIDs {
		out = append(out, *m.tiles[tid])
	}
	return e.occupant, e.anchor, out, nil
}

// PlaceOccupant claims every tile under the occupant's rectangle anchored
// at anchor. Nothing changes unless all tiles exist, are unoccupied and
// pass policy.
func (m *Tilemap) PlaceOccupant(anchor Point, o Occupant, policy PlacementPolicy) error {
	o = o.normalized()
	if err := o.validate(); err != nil {
		return err
	}
	if policy == nil {
		policy = AllowAny
	}
	rect := Rect{X: anchor.X, Y: anchor.Y, Width: o.Width, Height: o.Height}
	if err := m.checkBounds(rect); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, placed := m.occupancy.lookup(o.ID); placed {
		return ErrAlreadyPlaced
	}
	ids, err := m.checkClaimLocked(rect, policy)
	if err != nil {
		return err
	}
	m.claimLocked(o, anchor, ids)
	m.revision++
	return nil
}

// PlaceOccupantOnTile places the occupant at the anchor of tile id.
func (m *Tilemap) PlaceOccupantOnTile(tileID int, o Occupant, policy PlacementPolicy) error {
	if tileID < 0 || tileID >= len(m.tiles) {
		return ErrTileNotFound
	}
	// Tile rects are fixed at construction; only remaining and occupant
	// change under the lock.
	return m.PlaceOccupant(m.tiles[tileID].rect.Anchor(), o, policy)
}

// RemoveOccupant clears the occupant from every tile it holds.
func (m *Tilemap) RemoveOccupant(id OccupantID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.occupancy.remove(id)
	if !ok {
		return ErrOccupantNotFound
	}
	for _, tid := range e.tileIDs {
		m.tiles[tid].clearOccupant()
	}
	m.revision++
	return nil
}

// MoveOccupant relocates a placed occupant so its rectangle is anchored
// at anchor. Tiles it already holds count as free for the check. On any
// rejection the occupant stays where it was.
func (m *Tilemap) MoveOccupant(id OccupantID, anchor Point, policy PlacementPolicy) error {
	if policy == nil {
		policy = AllowAny
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.occupancy.lookup(id)
	if !ok {
		return ErrOccupantNotFound
	}
	rect := Rect{X: anchor.X, Y: anchor.Y, Width: e.occupant.Width, Height: e.occupant.Height}
	if err := m.checkBounds(rect); err != nil {
		return err
	}

	held := m.tiles[e.tileIDs[0]].occupant
	for _, tid := range e.tileIDs {
		m.tiles[tid].clearOccupant()
	}
	ids, err := m.checkClaimLocked(rect, policy)
	if err != nil {
		for _, tid := range e.tileIDs {
			m.tiles[tid].setOccupant(held)
		}
		return err
	}
	m.occupancy.remove(id)
	m.claimLocked(e.occupant, anchor, ids)
	m.revision++
	return nil
}

// checkClaimLocked verifies every tile under rect exists, is free and
// passes policy, returning their ids.
func (m *Tilemap) checkClaimLocked(rect Rect, policy PlacementPolicy) ([]int, error) {
	for _, p := range rect.Cells() {
		if m.cells[m.index(p)] == voidCell {
			return nil, &CellError{Pos: p, Err: ErrNoTile}
		}
	}
	ids := m.tileIDsLocked(rect)
	for _, id := range ids {
		t := m.tiles[id]
		if t.occupant != nil {
			return nil, &AlreadyOccupiedError{Pos: t.Anchor(), Occupant: t.occupant.ID}
		}
	}
	for _, id := range ids {
		t := m.tiles[id]
		if err := policy(*t); err != nil {
			return nil, &CellError{Pos: t.Anchor(), Err: err}
		}
	}
	return ids, nil
}

func (m *Tilemap) claimLocked(o Occupant, anchor Point, ids []int) {
	held := o
	for _, id := range ids {
		m.tiles[id].setOccupant(&held)
	}
	m.occupancy.insert(o, anchor, ids)
}

// Harvest takes up to amount from the tile covering p and returns what
// was actually taken.
func (m *Tilemap) Harvest(p Point, amount int) (int, error) {
	n, _, err := m.HarvestTile(p, amount)
	return n, err
}

// HarvestTile is Harvest that also returns the tile as left by the
// harvest.
func (m *Tilemap) HarvestTile(p Point, amount int) (int, Tile, error) {
	if !m.InBounds(p) {
		return 0, Tile{}, &OutOfBoundsError{Pos: p}
	}
	if amount <= 0 {
		return 0, Tile{}, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tileAtLocked(p)
	if t == nil {
		return 0, Tile{}, &CellError{Pos: p, Err: ErrNoTile}
	}
	if !t.IsHarvestable() {
		return 0, *t, &CellError{Pos: t.Anchor(), Err: ErrNotHarvestable}
	}
	n := t.take(amount)
	m.revision++
	return n, *t, nil
}

func (m *Tilemap) tileAtLocked(p Point) *Tile {
	id := m.cells[m.index(p)]
	if id == voidCell {
		return nil
	}
	return m.tiles[id]
}

// tileIDsLocked lists the distinct tiles covering any cell of r, sorted.
// r must lie inside the map.
func (m *Tilemap) tileIDsLocked(r Rect) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0, 1)
	for _, p := range r.Cells() {
		id := m.cells[m.index(p)]
		if id == voidCell {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
