package combat

// EventType is the category of a combat event.
type EventType string

const (
	EventDamageAssigned     EventType = "damage-assigned"
	EventUnitWounded        EventType = "unit-wounded"
	EventUnitDestroyed      EventType = "unit-destroyed"
	EventForcedDiscard      EventType = "forced-discard"
	EventKnockout           EventType = "knockout"
	EventWardPreventedWound EventType = "ward-prevented-wound"
	EventAttackBlocked      EventType = "attack-blocked"
)

// DestroyReason records why a unit was destroyed.
type DestroyReason string

const (
	// ReasonForcedDestroy: a forced-destroy effect destroyed the unit
	// on its first wound.
	ReasonForcedDestroy DestroyReason = "forced-destroy"
	// ReasonDuplicateWound: a duplicate-wound effect destroyed the unit
	// on its first wound.
	ReasonDuplicateWound DestroyReason = "duplicate-wound"
	// ReasonDoubleWound: a second wound destroyed an already-wounded
	// unit.
	ReasonDoubleWound DestroyReason = "double-wound"
)

// Event is one entry in a command's ordered event list. Exactly one
// payload field is non-nil, matching Type. The order of events in a
// command's list is part of the engine contract: UI narration replays
// them in emission order.
type Event struct {
	Type EventType `json:"type"`

	DamageAssigned     *DamageAssignedEvent     `json:"damageAssigned,omitempty"`
	UnitWounded        *UnitWoundedEvent        `json:"unitWounded,omitempty"`
	UnitDestroyed      *UnitDestroyedEvent      `json:"unitDestroyed,omitempty"`
	ForcedDiscard      *ForcedDiscardEvent      `json:"forcedDiscard,omitempty"`
	Knockout           *KnockoutEvent           `json:"knockout,omitempty"`
	WardPreventedWound *WardPreventedWoundEvent `json:"wardPreventedWound,omitempty"`
	AttackBlocked      *AttackBlockedEvent      `json:"attackBlocked,omitempty"`
}

// DamageAssignedEvent is the primary event of a damage command.
type DamageAssignedEvent struct {
	EnemyInstanceID string `json:"enemyInstanceId"`
	AttackIndex     int    `json:"attackIndex"`
	// Damage is the computed attack damage after amplification and
	// reduction.
	Damage int `json:"damage"`
	// WoundsTaken is the number of wound cards the hero took to hand.
	WoundsTaken int `json:"woundsTaken"`
}

// UnitWoundedEvent records a unit taking its single wound.
type UnitWoundedEvent struct {
	PlayerID       string `json:"playerId"`
	UnitInstanceID string `json:"unitInstanceId"`
	DamageAbsorbed int    `json:"damageAbsorbed"`
}

// UnitDestroyedEvent records a unit's destruction and why.
type UnitDestroyedEvent struct {
	PlayerID       string        `json:"playerId"`
	UnitInstanceID string        `json:"unitInstanceId"`
	Reason         DestroyReason `json:"reason"`
}

// ForcedDiscardEvent records a forced-discard effect emptying the
// hero's hand of non-wound cards.
type ForcedDiscardEvent struct {
	PlayerID       string `json:"playerId"`
	CardsDiscarded int    `json:"cardsDiscarded"`
}

// KnockoutEvent records the hero crossing the hand-limit wound
// threshold. Emitted at most once per combat.
type KnockoutEvent struct {
	PlayerID         string `json:"playerId"`
	WoundsThisCombat int    `json:"woundsThisCombat"`
}

// WardPreventedWoundEvent records a ward negating one wound-causing
// assignment.
type WardPreventedWoundEvent struct {
	PlayerID       string `json:"playerId"`
	UnitInstanceID string `json:"unitInstanceId"`
	DamageNegated  int    `json:"damageNegated"`
}

// AttackBlockedEvent records a sub-attack being blocked.
type AttackBlockedEvent struct {
	EnemyInstanceID string `json:"enemyInstanceId"`
	AttackIndex     int    `json:"attackIndex"`
}
