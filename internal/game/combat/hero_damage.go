package combat

import (
	"github.com/greyhaven/thornwall/internal/game/card"
	"github.com/greyhaven/thornwall/internal/game/state"
)

// woundsFor converts a damage amount into wound cards using the
// player's armor: ceil(amount / armor).
//
// Precondition: armor must be >= 1.
// Postcondition: Returns 0 for amount <= 0.
func woundsFor(amount, armor int) int {
	if amount <= 0 {
		return 0
	}
	return (amount + armor - 1) / armor
}

// applyHeroWounds adds wounds wound cards to the player's hand and
// applies the side effects of the active enemy abilities, in order:
// duplicate-wound mirrors the wounds into discard (these do not count
// toward the knockout threshold), forced-discard empties the hand of
// non-wound cards, and finally the cumulative counter is updated and
// the knockout threshold evaluated. The knockout event fires at most
// once per combat; later wounds keep incrementing the counter without
// re-emitting.
//
// This path is identical regardless of how damage reached the hero:
// direct assignment or overflow from unit absorption.
//
// Precondition: p must be non-nil; wounds must be > 0.
// Postcondition: Returns the forced-discard and knockout events in
// emission order (possibly none).
func applyHeroWounds(p *state.Player, wounds int, dupWound, forcedDiscard bool) []Event {
	var events []Event

	for i := 0; i < wounds; i++ {
		p.Hand = append(p.Hand, card.Wound())
	}
	if dupWound {
		for i := 0; i < wounds; i++ {
			p.Discard = append(p.Discard, card.Wound())
		}
	}
	if forcedDiscard {
		moved := p.DiscardNonWounds()
		events = append(events, Event{
			Type: EventForcedDiscard,
			ForcedDiscard: &ForcedDiscardEvent{
				PlayerID:       p.ID,
				CardsDiscarded: moved,
			},
		})
	}

	p.WoundsThisCombat += wounds
	if p.WoundsThisCombat >= p.HandLimit && !p.KnockedOut {
		p.KnockedOut = true
		p.DiscardNonWounds()
		events = append(events, Event{
			Type: EventKnockout,
			Knockout: &KnockoutEvent{
				PlayerID:         p.ID,
				WoundsThisCombat: p.WoundsThisCombat,
			},
		})
	}
	return events
}
