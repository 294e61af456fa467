// Package ability defines the closed set of enemy abilities and the
// pure resolution helpers that decide whether an ability affects a
// given attack. Abilities are a tagged union, not string keys: every
// resolution site switches exhaustively, so adding an ability is a
// compile-time-checked change.
package ability

import "fmt"

// Ability is one enemy ability from the closed set.
type Ability int

const (
	// Amplify doubles an attack's base damage before any reduction.
	Amplify Ability = iota
	// DuplicateWound mirrors hero wounds into the discard pile and
	// destroys a unit outright on its first wound.
	DuplicateWound
	// ForcedDestroy forces a full hand discard on the hero and destroys
	// a unit outright on its first wound.
	ForcedDestroy
	// LifeDrain grants the enemy a running bonus equal to the wounds it
	// has dealt this combat.
	LifeDrain
)

// All lists every ability in application order. The order is fixed:
// amplification resolves before reductions, wound-escalation effects
// resolve during wound processing, and life-drain accrues last.
var All = []Ability{Amplify, DuplicateWound, ForcedDestroy, LifeDrain}

// String returns the wire/display name of the ability.
func (a Ability) String() string {
	switch a {
	case Amplify:
		return "amplify"
	case DuplicateWound:
		return "duplicate_wound"
	case ForcedDestroy:
		return "forced_destroy"
	case LifeDrain:
		return "life_drain"
	default:
		return "unknown"
	}
}

// Parse converts a wire name back into an Ability.
//
// Postcondition: Returns the matching Ability, or an error for an
// unrecognised name.
func Parse(s string) (Ability, error) {
	switch s {
	case "amplify":
		return Amplify, nil
	case "duplicate_wound":
		return DuplicateWound, nil
	case "forced_destroy":
		return ForcedDestroy, nil
	case "life_drain":
		return LifeDrain, nil
	default:
		return Amplify, fmt.Errorf("unknown ability %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so abilities serialise
// as their wire names in JSON and YAML.
func (a Ability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Ability) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Active reports whether ability a affects the current attack: it must
// be present on the enemy's definition and not nullified for this
// combat. Both inputs come from an explicit snapshot, never from
// process-wide state.
func Active(defAbilities, nullified []Ability, a Ability) bool {
	if contains(nullified, a) {
		return false
	}
	return contains(defAbilities, a)
}

// AmplifyFactor returns the base-damage multiplier contributed by a.
//
// Postcondition: Returns 2 for Amplify, 1 for every other ability.
func AmplifyFactor(a Ability) int {
	switch a {
	case Amplify:
		return 2
	case DuplicateWound, ForcedDestroy, LifeDrain:
		return 1
	default:
		return 1
	}
}

func contains(abilities []Ability, a Ability) bool {
	for _, x := range abilities {
		if x == a {
			return true
		}
	}
	return false
}
