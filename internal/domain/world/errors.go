package world

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrOutOfBounds      = errors.New("coordinate out of bounds")
	ErrNoTile           = errors.New("no tile at coordinate")
	ErrTileNotFound     = errors.New("tile not found")
	ErrAlreadyOccupied  = errors.New("tile already occupied")
	ErrAlreadyPlaced    = errors.New("occupant already placed")
	ErrNotWalkable      = errors.New("tile not walkable")
	ErrNotBuildable     = errors.New("tile not buildable")
	ErrNotHarvestable   = errors.New("tile not harvestable")
	ErrOccupantNotFound = errors.New("occupant not found")
	ErrInvalidOccupant  = errors.New("invalid occupant")
	ErrInvalidAmount    = errors.New("invalid harvest amount")
)

// ConfigurationError reports invalid construction data. It aborts a map
// load rather than being handled per call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

func configErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type OutOfBoundsError struct {
	Pos Point
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: (%d,%d)", ErrOutOfBounds, e.Pos.X, e.Pos.Y)
}

func (e *OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}

type AlreadyOccupiedError struct {
	Pos      Point
	Occupant OccupantID
}

func (e *AlreadyOccupiedError) Error() string {
	return fmt.Sprintf("%s: (%d,%d) held by %q", ErrAlreadyOccupied, e.Pos.X, e.Pos.Y, e.Occupant)
}

func (e *AlreadyOccupiedError) Unwrap() error {
	return ErrAlreadyOccupied
}

// CellError ties a recoverable rejection (no tile, not walkable, ...) to
// the cell that caused it.
type CellError struct {
	Pos Point
	Err error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%s: (%d,%d)", e.Err, e.Pos.X, e.Pos.Y)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

// ReasonCode maps a recoverable domain error to a stable machine code.
// The boolean is false for errors that are not part of the taxonomy.
func ReasonCode(err error) (string, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, ErrConfiguration):
		return "configuration_error", true
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds", true
	case errors.Is(err, ErrNoTile):
		return "no_tile", true
	case errors.Is(err, ErrTileNotFound):
		return "tile_not_found", true
	case errors.Is(err, ErrAlreadyOccupied):
		return "already_occupied", true
	case errors.Is(err, ErrAlreadyPlaced):
		return "already_placed", true
	case errors.Is(err, ErrNotWalkable):
		return "not_walkable", true
	case errors.Is(err, ErrNotBuildable):
		return "not_buildable", true
	case errors.Is(err, ErrNotHarvestable):
		return "not_harvestable", true
	case errors.Is(err, ErrOccupantNotFound):
		return "occupant_not_found", true
	case errors.Is(err, ErrInvalidOccupant):
		return "invalid_occupant", true
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount", true
	default:
		return "", false
	}
}
