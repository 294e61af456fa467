// Package combat implements the deterministic damage-resolution engine
// for Thornwall. Each command is a pure function from one immutable
// snapshot to a new snapshot plus an ordered event list; correctness
// depends on exact rule ordering, so the orchestrator follows its
// numbered steps literally.
package combat

import (
	"fmt"

	"github.com/greyhaven/thornwall/internal/game/ability"
	"github.com/greyhaven/thornwall/internal/game/catalog"
	"github.com/greyhaven/thornwall/internal/game/element"
	"github.com/greyhaven/thornwall/internal/game/state"
)

// Engine resolves combat commands against snapshots. It holds only the
// immutable definition catalog; all mutable state lives in snapshots.
type Engine struct {
	catalog *catalog.Registry
}

// NewEngine creates an Engine over the given definition catalog.
//
// Precondition: reg must be non-nil.
func NewEngine(reg *catalog.Registry) *Engine {
	return &Engine{catalog: reg}
}

// AssignDamage resolves one enemy sub-attack's damage against the
// acting player per the caller-supplied distribution. It returns a new
// snapshot and the ordered event list; the input snapshot is never
// mutated.
//
// Rule order: base damage, amplification, effective element, consumable
// flat reduction, ward interception per assignment, unit processing,
// hero wound conversion, ability side effects, knockout evaluation,
// life-drain accrual, primary event, sub-attack bookkeeping.
//
// Validation failures are fatal (see errors.go): a correct caller
// never produces them.
func (e *Engine) AssignDamage(snap *state.Snapshot, cmd AssignDamageCommand) (*state.Snapshot, []Event, error) {
	next := snap.Clone()

	player, enemy, def, idx, err := e.validateTarget(next, cmd.PlayerID, cmd.EnemyInstanceID, cmd.AttackIndex)
	if err != nil {
		return nil, nil, err
	}
	cbt := next.Combat

	// Steps 1-2: base damage, amplified before any reduction.
	nullified := cbt.NullifiedFor(enemy.InstanceID)
	damage := def.Attacks[idx].Damage
	if ability.Active(def.Abilities, nullified, ability.Amplify) {
		damage *= ability.AmplifyFactor(ability.Amplify)
	}

	// Step 3: effective element, overridable per enemy.
	elem := def.Attacks[idx].Element
	if ov, ok := cbt.ElementOverrides[enemy.InstanceID]; ok {
		elem = ov
	}

	// Step 4: consume at most one matching flat reduction, exactly
	// once regardless of how many assignments follow.
	damage = consumeReduction(cbt, elem, damage)

	// Step 5: wound-escalation effects are independent booleans.
	dupWound := ability.Active(def.Abilities, nullified, ability.DuplicateWound)
	forcedDestroy := ability.Active(def.Abilities, nullified, ability.ForcedDestroy)

	// Step 6: default to a single hero-targeted assignment.
	assignments := cmd.Assignments
	if len(assignments) == 0 {
		assignments = []Assignment{{Target: TargetHero, Amount: damage}}
	}

	// Step 7: process assignments in caller order. Later assignments
	// must observe the mutated results of earlier ones, so everything
	// threads through the cloned snapshot.
	var events []Event
	heroWounds := 0
	unitEvents := 0
	for _, asg := range assignments {
		switch asg.Target {
		case TargetHero:
			if asg.Amount < 0 {
				return nil, nil, fmt.Errorf("%w: negative amount %d", ErrInvalidAssignment, asg.Amount)
			}
			heroWounds += woundsFor(asg.Amount, player.Armor)

		case TargetUnit:
			if asg.Amount < 0 {
				return nil, nil, fmt.Errorf("%w: negative amount %d", ErrInvalidAssignment, asg.Amount)
			}
			unit := player.Unit(asg.UnitInstanceID)
			if unit == nil {
				return nil, nil, fmt.Errorf("%w: %q", ErrUnknownUnit, asg.UnitInstanceID)
			}

			// Ward interception happens before normal processing and
			// skips it entirely.
			if ward := player.WardForUnit(unit.InstanceID); ward != nil {
				ward.Used = true
				events = append(events, Event{
					Type: EventWardPreventedWound,
					WardPreventedWound: &WardPreventedWoundEvent{
						PlayerID:       player.ID,
						UnitInstanceID: unit.InstanceID,
						DamageNegated:  asg.Amount,
					},
				})
				continue
			}

			unitDef, ok := e.catalog.Unit(unit.DefID)
			if !ok {
				return nil, nil, fmt.Errorf("%w: unit %q", ErrMissingDefinition, unit.DefID)
			}
			out := resolveUnitDamage(unit, unitDef, asg.Amount, elem, dupWound, forcedDestroy)

			// Involvement marking: consumed by unrelated rules, set
			// regardless of whether the unit resisted.
			cbt.MarkInvolved(unit.InstanceID)

			switch {
			case out.destroyed:
				events = append(events, Event{
					Type: EventUnitDestroyed,
					UnitDestroyed: &UnitDestroyedEvent{
						PlayerID:       player.ID,
						UnitInstanceID: unit.InstanceID,
						Reason:         out.reason,
					},
				})
				unitEvents++
				player.RemoveUnit(unit.InstanceID)
			case out.wounded:
				events = append(events, Event{
					Type: EventUnitWounded,
					UnitWounded: &UnitWoundedEvent{
						PlayerID:       player.ID,
						UnitInstanceID: unit.InstanceID,
						DamageAbsorbed: out.absorbed,
					},
				})
				unitEvents++
			}

			// Unabsorbed remainder converts into hero wounds; it is
			// never silently discarded.
			heroWounds += woundsFor(out.remaining, player.Armor)

		default:
			return nil, nil, fmt.Errorf("%w: target %q", ErrInvalidAssignment, asg.Target)
		}
	}

	// Steps 8-9: hero wound pool, side effects, knockout threshold.
	if heroWounds > 0 {
		events = append(events, applyHeroWounds(player, heroWounds, dupWound, forcedDestroy)...)
	}

	// Step 10: life-drain accrues hero wounds plus unit wound/destroy
	// events from this command.
	if ability.Active(def.Abilities, nullified, ability.LifeDrain) {
		enemy.DrainBonus += heroWounds + unitEvents
	}

	// Step 11: primary event.
	events = append(events, Event{
		Type: EventDamageAssigned,
		DamageAssigned: &DamageAssignedEvent{
			EnemyInstanceID: enemy.InstanceID,
			AttackIndex:     idx,
			Damage:          damage,
			WoundsTaken:     heroWounds,
		},
	})

	// Step 12: sub-attack bookkeeping.
	enemy.Assigned[idx] = true
	enemy.RecomputeResolved()

	return next, events, nil
}

// BlockAttack marks one sub-attack blocked so it deals no damage this
// round, and recomputes the enemy's aggregate resolved flag (a blocked
// sub-attack no longer needs a damage assignment).
func (e *Engine) BlockAttack(snap *state.Snapshot, cmd BlockAttackCommand) (*state.Snapshot, []Event, error) {
	next := snap.Clone()

	_, enemy, _, idx, err := e.validateTarget(next, cmd.PlayerID, cmd.EnemyInstanceID, cmd.AttackIndex)
	if err != nil {
		return nil, nil, err
	}

	enemy.Blocked[idx] = true
	enemy.RecomputeResolved()

	events := []Event{{
		Type: EventAttackBlocked,
		AttackBlocked: &AttackBlockedEvent{
			EnemyInstanceID: enemy.InstanceID,
			AttackIndex:     idx,
		},
	}}
	return next, events, nil
}

// UndoAssignDamage always fails: damage commands are terminal because
// they reveal irreversible information.
func (e *Engine) UndoAssignDamage() error {
	return ErrUndoUnsupported
}

// validateTarget performs the shared fatal precondition checks and
// resolves the sub-attack index (auto-selecting the first open one
// when attackIndex is nil).
func (e *Engine) validateTarget(snap *state.Snapshot, playerID, enemyInstanceID string, attackIndex *int) (*state.Player, *state.EnemyInstance, *catalog.EnemyDef, int, error) {
	if snap.Combat == nil {
		return nil, nil, nil, 0, ErrNoActiveCombat
	}
	player := snap.Player(playerID)
	if player == nil {
		return nil, nil, nil, 0, fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}
	enemy := snap.Enemy(enemyInstanceID)
	if enemy == nil {
		return nil, nil, nil, 0, fmt.Errorf("%w: %q", ErrUnknownEnemy, enemyInstanceID)
	}
	if enemy.Defeated {
		return nil, nil, nil, 0, fmt.Errorf("%w: %q", ErrEnemyDefeated, enemyInstanceID)
	}
	def, ok := e.catalog.Enemy(enemy.DefID)
	if !ok {
		return nil, nil, nil, 0, fmt.Errorf("%w: enemy %q", ErrMissingDefinition, enemy.DefID)
	}

	var idx int
	if attackIndex != nil {
		idx = *attackIndex
		if idx < 0 || idx >= len(enemy.Assigned) {
			return nil, nil, nil, 0, fmt.Errorf("%w: %d of %d", ErrAttackIndexOutOfRange, idx, len(enemy.Assigned))
		}
		if enemy.Blocked[idx] {
			return nil, nil, nil, 0, fmt.Errorf("%w: index %d", ErrAttackBlocked, idx)
		}
		if enemy.Assigned[idx] {
			return nil, nil, nil, 0, fmt.Errorf("%w: index %d", ErrAttackAlreadyAssigned, idx)
		}
	} else {
		open, ok := enemy.FirstOpenAttack()
		if !ok {
			return nil, nil, nil, 0, fmt.Errorf("%w: enemy %q", ErrNoAssignableAttack, enemyInstanceID)
		}
		idx = open
	}
	return player, enemy, def, idx, nil
}

// consumeReduction applies the first pending reduction matching elem,
// removes it from state, and returns the reduced damage (floored at
// zero). At most one reduction is consumed per command.
func consumeReduction(cbt *state.Combat, elem element.Element, damage int) int {
	for i, r := range cbt.DamageReductions {
		if !r.Matches(elem) {
			continue
		}
		damage -= r.Amount
		if damage < 0 {
			damage = 0
		}
		cbt.DamageReductions = append(cbt.DamageReductions[:i], cbt.DamageReductions[i+1:]...)
		return damage
	}
	return damage
}
