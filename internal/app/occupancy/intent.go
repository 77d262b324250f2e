package occupancy

import (
	"fmt"
	"strings"

	"tilecore/internal/domain/world"
)

// Intent is why an occupant lands on tiles; it selects the placement
// policy.
type Intent string

const (
	IntentNone  Intent = "none"
	IntentMove  Intent = "move"
	IntentBuild Intent = "build"
)

func ParseIntent(raw string) (Intent, error) {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case "", IntentNone:
		return IntentNone, nil
	case IntentMove:
		return IntentMove, nil
	case IntentBuild:
		return IntentBuild, nil
	default:
		return "", fmt.Errorf("%w: unknown intent %q", ErrInvalidRequest, raw)
	}
}

func (i Intent) Policy() world.PlacementPolicy {
	switch i {
	case IntentMove:
		return world.RequireWalkable
	case IntentBuild:
		return world.RequireBuildable
	default:
		return world.AllowAny
	}
}
