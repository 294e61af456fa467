package combat

import (
	"github.com/greyhaven/thornwall/internal/game/catalog"
	"github.com/greyhaven/thornwall/internal/game/element"
	"github.com/greyhaven/thornwall/internal/game/state"
)

// unitOutcome is the result of resolving one damage assignment against
// one unit.
type unitOutcome struct {
	// wounded is true when the unit took its single wound and survived.
	wounded bool
	// destroyed is true when the unit was destroyed; reason says why.
	destroyed bool
	reason    DestroyReason
	// absorbed is the damage the unit soaked up.
	absorbed int
	// remaining is the unabsorbed damage that must be routed onward
	// (it converts into hero wounds, never silently discarded).
	remaining int
}

// resolveUnitDamage applies one damage amount to one unit, mutating
// the unit record in place.
//
// Rule order, resistant path (matching element, unwounded, resistance
// unused): armor is subtracted once for the resistance. If damage
// remains, the unit wounds and armor is subtracted once more; an
// active forced-destroy or duplicate-wound effect upgrades the wound
// to destruction. If no damage remains the absorption succeeds with no
// wound and the one-time resistance flag is consumed for the combat.
//
// Non-resistant path: an already-wounded unit is destroyed outright
// (armor subtracted once for bookkeeping). An unwounded unit subtracts
// armor once, then wounds — or is destroyed when forced-destroy or
// duplicate-wound is active.
//
// Precondition: unit and def must be non-nil; amount must be >= 0.
// Postcondition: absorbed + remaining == amount; remaining >= 0.
func resolveUnitDamage(unit *state.UnitInstance, def *catalog.UnitDef, amount int, elem element.Element, dupWound, forcedDestroy bool) unitOutcome {
	out := unitOutcome{}

	if def.Resists(elem) && !unit.Wounded && !unit.ResistanceUsed {
		rem := amount - def.Armor
		if rem <= 0 {
			// Full absorption: no wound, resistance consumed for the
			// rest of this combat.
			unit.ResistanceUsed = true
			out.absorbed = amount
			return out
		}
		rem -= def.Armor
		switch {
		case forcedDestroy:
			out.destroyed = true
			out.reason = ReasonForcedDestroy
		case dupWound:
			out.destroyed = true
			out.reason = ReasonDuplicateWound
		default:
			unit.Wounded = true
			out.wounded = true
		}
		out.remaining = clampZero(rem)
		out.absorbed = amount - out.remaining
		return out
	}

	if unit.Wounded {
		// Second wound always destroys.
		out.destroyed = true
		out.reason = ReasonDoubleWound
		out.remaining = clampZero(amount - def.Armor)
		out.absorbed = amount - out.remaining
		return out
	}

	rem := amount - def.Armor
	switch {
	case forcedDestroy:
		out.destroyed = true
		out.reason = ReasonForcedDestroy
	case dupWound:
		out.destroyed = true
		out.reason = ReasonDuplicateWound
	default:
		unit.Wounded = true
		out.wounded = true
	}
	out.remaining = clampZero(rem)
	out.absorbed = amount - out.remaining
	return out
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
