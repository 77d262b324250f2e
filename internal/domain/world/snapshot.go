package world

import (
	"fmt"
	"time"
)

type TileState struct {
	ID                 int        `json:"id"`
	X                  int        `json:"x"`
	Y                  int        `json:"y"`
	TypeID             int        `json:"type_id"`
	ResourcesRemaining int        `json:"resources_remaining"`
	Occupant           OccupantID `json:"occupant,omitempty"`
}

type OccupantState struct {
	Occupant Occupant `json:"occupant"`
	Anchor   Point    `json:"anchor"`
}

// MapSnapshot is the dynamic state of a map instance: per-tile resources
// and occupancy. Terrain is not included; it comes from the definition.
type MapSnapshot struct {
	MapID        string          `json:"map_id"`
	DefinitionID string          `json:"definition_id"`
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Revision     uint64          `json:"revision"`
	Tiles        []TileState     `json:"tiles"`
	Occupants    []OccupantState `json:"occupants"`
	TakenAt      time.Time       `json:"taken_at"`
}

// Snapshot captures the map's dynamic state in one consistent read.
// MapID, DefinitionID and TakenAt are left for the caller.
func (m *Tilemap) Snapshot() MapSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := MapSnapshot{
		Width:     m.width,
		Height:    m.height,
		Revision:  m.revision,
		Tiles:     make([]TileState, 0, len(m.tiles)),
		Occupants: make([]OccupantState, 0, m.occupancy.len()),
	}
	for _, t := range m.tiles {
		ts := TileState{
			ID:                 t.id,
			X:                  t.rect.X,
			Y:                  t.rect.Y,
			TypeID:             t.terrain.TypeID,
			ResourcesRemaining: t.remaining,
		}
		if t.occupant != nil {
			ts.Occupant = t.occupant.ID
		}
		s.Tiles = append(s.Tiles, ts)
	}
	for _, id := range m.occupancy.ids() {
		e, _ := m.occupancy.lookup(id)
		s.Occupants = append(s.Occupants, OccupantState{Occupant: e.occupant, Anchor: e.anchor})
	}
	return s
}

// Restore replaces resources and occupancy with the snapshot's. The map
// must have been built from the same definition. The snapshot is fully
// validated before anything is applied.
func (m *Tilemap) Restore(s MapSnapshot) error {
	if s.Width != m.width || s.Height != m.height {
		return configErr("snapshot.size", "snapshot is %dx%d, map is %dx%d", s.Width, s.Height, m.width, m.height)
	}
	if len(s.Tiles) != len(m.tiles) {
		return configErr("snapshot.tiles", "snapshot has %d tiles, map has %d", len(s.Tiles), len(m.tiles))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	remaining := make([]int, len(m.tiles))
	recorded := make([]OccupantID, len(m.tiles))
	seen := make([]bool, len(m.tiles))
	claimed := make(map[OccupantID]int)
	for i, ts := range s.Tiles {
		field := fmt.Sprintf("snapshot.tiles[%d]", i)
		if ts.ID < 0 || ts.ID >= len(m.tiles) {
			return configErr(field, "unknown tile id %d", ts.ID)
		}
		if seen[ts.ID] {
			return configErr(field, "duplicate tile id %d", ts.ID)
		}
		seen[ts.ID] = true
		t := m.tiles[ts.ID]
		if t.rect.X != ts.X || t.rect.Y != ts.Y || t.terrain.TypeID != ts.TypeID {
			return configErr(field, "tile %d does not match map terrain", ts.ID)
		}
		limit := 0
		if t.resource != nil {
			limit = t.resource.InitialResources()
		}
		if ts.ResourcesRemaining < 0 || ts.ResourcesRemaining > limit {
			return configErr(field, "resources_remaining %d outside [0,%d]", ts.ResourcesRemaining, limit)
		}
		remaining[ts.ID] = ts.ResourcesRemaining
		recorded[ts.ID] = ts.Occupant
		if ts.Occupant != "" {
			claimed[ts.Occupant]++
		}
	}

	byTile := make(map[int]*Occupant)
	entries := make([]occupancyEntry, 0, len(s.Occupants))
	for i, st := range s.Occupants {
		field := fmt.Sprintf("snapshot.occupants[%d]", i)
		o := st.Occupant.normalized()
		if err := o.validate(); err != nil {
			return configErr(field, "%v", err)
		}
		rect := Rect{X: st.Anchor.X, Y: st.Anchor.Y, Width: o.Width, Height: o.Height}
		if !m.containsRect(rect) {
			return configErr(field, "footprint outside map")
		}
		for _, p := range rect.Cells() {
			if m.cells[m.index(p)] == voidCell {
				return configErr(field, "footprint covers void cell (%d,%d)", p.X, p.Y)
			}
		}
		ids := m.tileIDsLocked(rect)
		if len(ids) == 0 || len(ids) != claimed[o.ID] {
			return configErr(field, "occupant %q does not match tile occupancy", o.ID)
		}
		held := o
		for _, id := range ids {
			if _, taken := byTile[id]; taken {
				return configErr(field, "tile %d claimed twice", id)
			}
			if recorded[id] != o.ID {
				return configErr(field, "tile %d not recorded for occupant %q", id, o.ID)
			}
			byTile[id] = &held
		}
		delete(claimed, o.ID)
		entries = append(entries, occupancyEntry{occupant: o, anchor: st.Anchor, tileIDs: ids})
	}
	if len(claimed) > 0 {
		return configErr("snapshot.occupants", "%d occupant(s) hold tiles without a footprint", len(claimed))
	}

	m.occupancy.reset()
	for i, t := range m.tiles {
		t.remaining = remaining[i]
		t.occupant = byTile[i]
	}
	for _, e := range entries {
		m.occupancy.insert(e.occupant, e.anchor, e.tileIDs)
	}
	m.revision = s.Revision
	return nil
}
