package occupancy

import "tilecore/internal/app/shared/tileview"

// PlaceRequest anchors the occupant at (X, Y), or at the anchor of TileID
// when it is set.
type PlaceRequest struct {
	MapID      string `json:"-"`
	OccupantID string `json:"occupant_id"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	TileID     *int   `json:"tile_id,omitempty"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Blocking   bool   `json:"blocking"`
	Intent     string `json:"intent"`
}

type MoveRequest struct {
	MapID      string `json:"-"`
	OccupantID string `json:"-"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Intent     string `json:"intent"`
}

type Response struct {
	Footprint tileview.Footprint `json:"footprint"`
	Revision  uint64             `json:"revision"`
}

type RemoveResponse struct {
	OccupantID string `json:"occupant_id"`
	Revision   uint64 `json:"revision"`
}
