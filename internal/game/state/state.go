// Package state defines the immutable match snapshot the engine
// operates on. Commands never mutate a snapshot in place: they clone
// it, apply their changes to the clone, and return it.
package state

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/greyhaven/thornwall/internal/game/ability"
	"github.com/greyhaven/thornwall/internal/game/catalog"
	"github.com/greyhaven/thornwall/internal/game/element"
)

// Snapshot is the entire match state at one point in time.
type Snapshot struct {
	// MatchID identifies the match this snapshot belongs to.
	MatchID string `json:"matchId"`
	// Players are the heroes in the match.
	Players []*Player `json:"players"`
	// Combat is the active combat sub-state, or nil between combats.
	Combat *Combat `json:"combat,omitempty"`
}

// Combat is the transient sub-state of one combat. It is created when
// combat begins and discarded wholesale when combat ends.
type Combat struct {
	// Enemies are the live enemy instances in this combat.
	Enemies []*EnemyInstance `json:"enemies"`
	// DamageReductions are the pending consumable flat hero-damage
	// reductions, consumed in slice order.
	DamageReductions []DamageReduction `json:"damageReductions,omitempty"`
	// ElementOverrides maps enemy instance id to a replacement element
	// for that enemy's attacks this combat.
	ElementOverrides map[string]element.Element `json:"elementOverrides,omitempty"`
	// Nullified maps enemy instance id to the abilities nullified on it
	// this combat.
	Nullified map[string][]ability.Ability `json:"nullified,omitempty"`
	// InvolvedUnits records units that absorbed damage this combat.
	// Unrelated rule bookkeeping consumes it; the damage command only
	// ever sets entries.
	InvolvedUnits map[string]bool `json:"involvedUnits,omitempty"`
}

// DamageReduction is a transient, single-use flat reduction to hero
// damage. It is removed from state once consumed.
type DamageReduction struct {
	// Element is the attack element the reduction applies to.
	Element element.Element `json:"element"`
	// AnyElement makes the reduction apply regardless of element.
	AnyElement bool `json:"anyElement,omitempty"`
	// Amount is the flat damage subtracted (floored at zero).
	Amount int `json:"amount"`
}

// Matches reports whether the reduction applies to an attack of the
// given element.
func (r DamageReduction) Matches(e element.Element) bool {
	return r.AnyElement || r.Element == e
}

// EnemyInstance is a live enemy in the active combat.
type EnemyInstance struct {
	// InstanceID uniquely identifies this runtime instance.
	InstanceID string `json:"instanceId"`
	// DefID is the static definition id.
	DefID string `json:"defId"`
	// Blocked marks each sub-attack that has been blocked.
	// Invariant: len(Blocked) == len(def.Attacks).
	Blocked []bool `json:"blocked"`
	// Assigned marks each sub-attack whose damage has been assigned.
	// Invariant: len(Assigned) == len(def.Attacks).
	Assigned []bool `json:"damageAssigned"`
	// Defeated is set when the enemy is killed.
	Defeated bool `json:"defeated"`
	// AttacksResolved is true only when every unblocked sub-attack has
	// had its damage assigned. Recomputed after each block/damage
	// command.
	AttacksResolved bool `json:"attacksResolved"`
	// DrainBonus is the running life-drain accumulator.
	DrainBonus int `json:"drainBonus,omitempty"`
}

// NewEnemyInstance creates a live enemy instance from its definition.
//
// Precondition: def must be non-nil with at least one attack.
// Postcondition: Blocked and Assigned have length len(def.Attacks).
func NewEnemyInstance(def *catalog.EnemyDef) (*EnemyInstance, error) {
	if def == nil {
		return nil, fmt.Errorf("NewEnemyInstance: def must not be nil")
	}
	if len(def.Attacks) == 0 {
		return nil, fmt.Errorf("NewEnemyInstance: enemy %q has no attacks", def.ID)
	}
	return &EnemyInstance{
		InstanceID: uuid.NewString(),
		DefID:      def.ID,
		Blocked:    make([]bool, len(def.Attacks)),
		Assigned:   make([]bool, len(def.Attacks)),
	}, nil
}

// RecomputeResolved updates AttacksResolved: true only when every
// unblocked sub-attack has been assigned.
func (e *EnemyInstance) RecomputeResolved() {
	for i := range e.Assigned {
		if !e.Blocked[i] && !e.Assigned[i] {
			e.AttacksResolved = false
			return
		}
	}
	e.AttacksResolved = true
}

// FirstOpenAttack returns the index of the first sub-attack that is
// neither blocked nor assigned, or (0, false) when none remains.
func (e *EnemyInstance) FirstOpenAttack() (int, bool) {
	for i := range e.Assigned {
		if !e.Blocked[i] && !e.Assigned[i] {
			return i, true
		}
	}
	return 0, false
}

// Player returns the player with the given id, or nil.
func (s *Snapshot) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Enemy returns the enemy instance with the given id from the active
// combat, or nil when combat is inactive or the id is unknown.
func (s *Snapshot) Enemy(instanceID string) *EnemyInstance {
	if s.Combat == nil {
		return nil
	}
	for _, e := range s.Combat.Enemies {
		if e.InstanceID == instanceID {
			return e
		}
	}
	return nil
}

// StartCombat creates the combat sub-state with the given enemies.
//
// Precondition: no combat may be active.
// Postcondition: Combat is non-nil; every player's WoundsThisCombat
// and KnockedOut are reset; unit resistance flags are cleared.
func (s *Snapshot) StartCombat(enemies []*EnemyInstance) error {
	if s.Combat != nil {
		return fmt.Errorf("combat already active in match %q", s.MatchID)
	}
	s.Combat = &Combat{Enemies: enemies}
	for _, p := range s.Players {
		p.WoundsThisCombat = 0
		p.KnockedOut = false
		for _, u := range p.Units {
			u.ResistanceUsed = false
		}
	}
	return nil
}

// EndCombat discards the combat sub-state.
//
// Postcondition: Combat is nil.
func (s *Snapshot) EndCombat() {
	s.Combat = nil
}

// ResetWards clears the Used flag on every ward. The round-end caller
// drives this; the damage command never does.
func (s *Snapshot) ResetWards() {
	for _, p := range s.Players {
		for _, w := range p.Wards {
			w.Used = false
		}
	}
}

// Clone returns a deep copy of the snapshot. Mutating the copy never
// affects the original.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{MatchID: s.MatchID}
	out.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.clone()
	}
	if s.Combat != nil {
		out.Combat = s.Combat.clone()
	}
	return out
}

func (c *Combat) clone() *Combat {
	out := &Combat{}
	out.Enemies = make([]*EnemyInstance, len(c.Enemies))
	for i, e := range c.Enemies {
		ec := *e
		ec.Blocked = append([]bool(nil), e.Blocked...)
		ec.Assigned = append([]bool(nil), e.Assigned...)
		out.Enemies[i] = &ec
	}
	out.DamageReductions = append([]DamageReduction(nil), c.DamageReductions...)
	if c.ElementOverrides != nil {
		out.ElementOverrides = make(map[string]element.Element, len(c.ElementOverrides))
		for k, v := range c.ElementOverrides {
			out.ElementOverrides[k] = v
		}
	}
	if c.Nullified != nil {
		out.Nullified = make(map[string][]ability.Ability, len(c.Nullified))
		for k, v := range c.Nullified {
			out.Nullified[k] = append([]ability.Ability(nil), v...)
		}
	}
	if c.InvolvedUnits != nil {
		out.InvolvedUnits = make(map[string]bool, len(c.InvolvedUnits))
		for k, v := range c.InvolvedUnits {
			out.InvolvedUnits[k] = v
		}
	}
	return out
}

// MarkInvolved records that the given unit absorbed damage this combat.
func (c *Combat) MarkInvolved(unitInstanceID string) {
	if c.InvolvedUnits == nil {
		c.InvolvedUnits = make(map[string]bool)
	}
	c.InvolvedUnits[unitInstanceID] = true
}

// NullifiedFor returns the abilities nullified on the given enemy.
func (c *Combat) NullifiedFor(enemyInstanceID string) []ability.Ability {
	if c.Nullified == nil {
		return nil
	}
	return c.Nullified[enemyInstanceID]
}
