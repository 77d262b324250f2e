package world

import "sort"

// occupancyIndex is the reverse lookup from occupant identity to the
// tiles it holds. It is only touched under the owning Tilemap's lock.
type occupancyIndex struct {
	byOccupant map[OccupantID]occupancyEntry
}

type occupancyEntry struct {
	occupant Occupant
	anchor   Point
	tileIDs  []int
}

func newOccupancyIndex() *occupancyIndex {
	return &occupancyIndex{byOccupant: make(map[OccupantID]occupancyEntry)}
}

func (ix *occupancyIndex) lookup(id OccupantID) (occupancyEntry, bool) {
	e, ok := ix.byOccupant[id]
	return e, ok
}

func (ix *occupancyIndex) insert(o Occupant, anchor Point, tileIDs []int) {
	ids := append([]int(nil), tileIDs...)
	sort.Ints(ids)
	ix.byOccupant[o.ID] = occupancyEntry{occupant: o, anchor: anchor, tileIDs: ids}
}

func (ix *occupancyIndex) remove(id OccupantID) (occupancyEntry, bool) {
	e, ok := ix.byOccupant[id]
	if ok {
		delete(ix.byOccupant, id)
	}
	return e, ok
}

func (ix *occupancyIndex) len() int {
	return len(ix.byOccupant)
}

// ids returns the registered identities in sorted order.
func (ix *occupancyIndex) ids() []OccupantID {
	out := make([]OccupantID, 0, len(ix.byOccupant))
	for id := range ix.byOccupant {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (ix *occupancyIndex) reset() {
	ix.byOccupant = make(map[OccupantID]occupancyEntry)
}
