package combat

import "errors"

// Validation failures are fatal: a correct caller never produces them.
// They represent integration bugs, not game outcomes, so handlers must
// not translate them into soft user-facing feedback.
var (
	// ErrNoActiveCombat is returned when a combat command arrives
	// outside an active combat.
	ErrNoActiveCombat = errors.New("no active combat")
	// ErrUnknownPlayer is returned when the acting player id does not
	// exist in the snapshot.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrUnknownEnemy is returned when the enemy instance id does not
	// exist in the active combat.
	ErrUnknownEnemy = errors.New("unknown enemy instance")
	// ErrUnknownUnit is returned when an assignment references a unit
	// instance the player does not have.
	ErrUnknownUnit = errors.New("unknown unit instance")
	// ErrEnemyDefeated is returned when the target enemy is already
	// defeated.
	ErrEnemyDefeated = errors.New("enemy already defeated")
	// ErrAttackIndexOutOfRange is returned when the sub-attack index is
	// outside the enemy's attack list.
	ErrAttackIndexOutOfRange = errors.New("attack index out of range")
	// ErrAttackBlocked is returned when the chosen sub-attack has been
	// blocked and therefore deals no damage.
	ErrAttackBlocked = errors.New("attack already blocked")
	// ErrAttackAlreadyAssigned is returned when the chosen sub-attack's
	// damage has already been assigned.
	ErrAttackAlreadyAssigned = errors.New("attack damage already assigned")
	// ErrNoAssignableAttack is returned when no sub-attack index was
	// supplied and every sub-attack is blocked or assigned.
	ErrNoAssignableAttack = errors.New("no unblocked, unassigned attack remains")
	// ErrInvalidAssignment is returned for a malformed damage
	// assignment (bad target kind, negative amount).
	ErrInvalidAssignment = errors.New("invalid damage assignment")
	// ErrMissingDefinition is returned when a referenced static
	// definition is absent from the catalog. This is an integration
	// bug, never a user-facing condition.
	ErrMissingDefinition = errors.New("missing static definition")
	// ErrUndoUnsupported documents that combat damage commands are
	// one-directional: revealed information cannot be taken back.
	ErrUndoUnsupported = errors.New("damage commands cannot be undone")
)
