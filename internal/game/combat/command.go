package combat

// TargetKind is the destination of one damage assignment.
type TargetKind string

const (
	TargetHero TargetKind = "hero"
	TargetUnit TargetKind = "unit"
)

// Assignment routes part of an attack's damage to the hero or to a
// specific unit instance.
type Assignment struct {
	// Target selects hero or unit.
	Target TargetKind `json:"target"`
	// Amount is the damage routed by this assignment.
	Amount int `json:"amount"`
	// UnitInstanceID is required when Target is TargetUnit.
	UnitInstanceID string `json:"unitInstanceId,omitempty"`
}

// AssignDamageCommand is the request to resolve one enemy sub-attack's
// damage against the acting player.
type AssignDamageCommand struct {
	// PlayerID is the acting player.
	PlayerID string `json:"playerId"`
	// EnemyInstanceID is the attacking enemy.
	EnemyInstanceID string `json:"enemyInstanceId"`
	// AttackIndex selects the sub-attack. When nil, the first
	// unblocked, unassigned sub-attack is used.
	AttackIndex *int `json:"attackIndex,omitempty"`
	// Assignments distribute the damage, processed in order. When
	// empty, all damage goes to the hero.
	Assignments []Assignment `json:"assignments,omitempty"`
}

// BlockAttackCommand marks one enemy sub-attack as blocked so it deals
// no damage this round.
type BlockAttackCommand struct {
	// PlayerID is the acting player.
	PlayerID string `json:"playerId"`
	// EnemyInstanceID is the attacking enemy.
	EnemyInstanceID string `json:"enemyInstanceId"`
	// AttackIndex selects the sub-attack. When nil, the first
	// unblocked, unassigned sub-attack is used.
	AttackIndex *int `json:"attackIndex,omitempty"`
}
