package maps

import "time"

// LoadRequest names the definition to build. MapID is optional and a
// random id is assigned when empty; Restore requires it.
type LoadRequest struct {
	MapID        string
	DefinitionID string
	Restore      bool
}

type Summary struct {
	MapID         string    `json:"map_id"`
	DefinitionID  string    `json:"definition_id"`
	Name          string    `json:"name"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	TileCount     int       `json:"tile_count"`
	OccupantCount int       `json:"occupant_count"`
	Revision      uint64    `json:"revision"`
	Restored      bool      `json:"restored"`
	CreatedAt     time.Time `json:"created_at"`
}

type SnapshotResult struct {
	MapID        string    `json:"map_id"`
	Revision     uint64    `json:"revision"`
	Tiles        int       `json:"tiles"`
	Occupants    int       `json:"occupants"`
	Archived     bool      `json:"archived"`
	ArchiveError string    `json:"archive_error,omitempty"`
	TakenAt      time.Time `json:"taken_at"`
}
