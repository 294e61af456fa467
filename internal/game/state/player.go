package state

import (
	"github.com/google/uuid"

	"github.com/greyhaven/thornwall/internal/game/card"
)

// Player is one hero in the match.
type Player struct {
	// ID uniquely identifies the player.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Armor divides incoming damage into wound cards.
	Armor int `json:"armor"`
	// HandLimit is the knockout threshold for wounds taken to hand in
	// one combat.
	HandLimit int `json:"handLimit"`
	// Hand is the player's current hand in draw order.
	Hand []card.Card `json:"hand"`
	// Discard is the player's discard pile.
	Discard []card.Card `json:"discard"`
	// WoundsThisCombat counts wound cards added to hand during the
	// active combat. It keeps incrementing after a knockout.
	WoundsThisCombat int `json:"woundsThisCombat"`
	// KnockedOut is set once WoundsThisCombat reaches HandLimit.
	KnockedOut bool `json:"knockedOut"`
	// Units are the player's recruited units.
	Units []*UnitInstance `json:"units"`
	// Wards are the player's protective attachments bound to units.
	Wards []*AttachedWard `json:"wards"`
}

// UnitInstance is a live recruited unit.
//
// Invariant: a unit holds at most one wound; a second wound always
// destroys it, so Wounded never needs to count.
type UnitInstance struct {
	// InstanceID uniquely identifies this runtime instance.
	InstanceID string `json:"instanceId"`
	// DefID is the static definition id.
	DefID string `json:"defId"`
	// Wounded is set when the unit has taken its single wound.
	Wounded bool `json:"wounded"`
	// ResistanceUsed is set once the unit's elemental resistance has
	// fully absorbed an attack this combat.
	ResistanceUsed bool `json:"usedResistanceThisCombat"`
}

// NewUnitInstance creates a fresh unit instance of the given definition.
//
// Precondition: defID must be non-empty.
// Postcondition: Returns an unwounded instance with a unique id.
func NewUnitInstance(defID string) *UnitInstance {
	return &UnitInstance{
		InstanceID: uuid.NewString(),
		DefID:      defID,
	}
}

// AttachedWard is a one-time protective attachment bound to a unit.
// While unused it negates exactly one wound-causing assignment to its
// bound unit; the round-end reset that un-flips Used is driven by the
// caller, never by the damage command.
type AttachedWard struct {
	// WardID identifies the ward card/effect.
	WardID string `json:"wardId"`
	// UnitInstanceID is the bound unit.
	UnitInstanceID string `json:"unitInstanceId"`
	// Used is set when the ward has negated a wound this round.
	Used bool `json:"used"`
}

// Unit returns the player's unit with the given instance id, or nil.
func (p *Player) Unit(instanceID string) *UnitInstance {
	for _, u := range p.Units {
		if u.InstanceID == instanceID {
			return u
		}
	}
	return nil
}

// RemoveUnit removes the unit with the given instance id from the
// roster, along with any wards bound to it.
//
// Postcondition: Unit(instanceID) returns nil.
func (p *Player) RemoveUnit(instanceID string) {
	units := p.Units[:0]
	for _, u := range p.Units {
		if u.InstanceID != instanceID {
			units = append(units, u)
		}
	}
	p.Units = units

	wards := p.Wards[:0]
	for _, w := range p.Wards {
		if w.UnitInstanceID != instanceID {
			wards = append(wards, w)
		}
	}
	p.Wards = wards
}

// WardForUnit returns the first unused ward bound to the given unit,
// or nil when none is available.
func (p *Player) WardForUnit(unitInstanceID string) *AttachedWard {
	for _, w := range p.Wards {
		if w.UnitInstanceID == unitInstanceID && !w.Used {
			return w
		}
	}
	return nil
}

// NonWoundHandCount returns the number of non-wound cards in hand.
func (p *Player) NonWoundHandCount() int {
	return len(p.Hand) - card.CountWounds(p.Hand)
}

// DiscardNonWounds moves every non-wound card from hand to discard.
//
// Postcondition: Returns the number of cards moved; the hand retains
// only wound cards in their original order.
func (p *Player) DiscardNonWounds() int {
	wounds, nonWounds := card.SplitWounds(p.Hand)
	p.Hand = wounds
	p.Discard = append(p.Discard, nonWounds...)
	return len(nonWounds)
}

func (p *Player) clone() *Player {
	out := *p
	out.Hand = append([]card.Card(nil), p.Hand...)
	out.Discard = append([]card.Card(nil), p.Discard...)
	out.Units = make([]*UnitInstance, len(p.Units))
	for i, u := range p.Units {
		c := *u
		out.Units[i] = &c
	}
	out.Wards = make([]*AttachedWard, len(p.Wards))
	for i, w := range p.Wards {
		c := *w
		out.Wards[i] = &c
	}
	return &out
}
