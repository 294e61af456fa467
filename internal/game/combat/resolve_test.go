package combat

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/greyhaven/thornwall/internal/game/ability"
	"github.com/greyhaven/thornwall/internal/game/card"
	"github.com/greyhaven/thornwall/internal/game/catalog"
	"github.com/greyhaven/thornwall/internal/game/element"
	"github.com/greyhaven/thornwall/internal/game/state"
)

func testRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	reg := catalog.NewRegistry()

	units := []*catalog.UnitDef{
		{ID: "footman", Name: "Footman", Armor: 2},
		{ID: "warden", Name: "Warden", Armor: 3, Resistances: []element.Element{element.Physical}},
	}
	for _, u := range units {
		if err := reg.RegisterUnit(u); err != nil {
			t.Fatalf("registering unit %q: %v", u.ID, err)
		}
	}

	enemies := []*catalog.EnemyDef{
		{ID: "wolf", Name: "Wolf", Armor: 4,
			Attacks: []catalog.AttackDef{{Damage: 4, Element: element.Physical}}},
		{ID: "shade", Name: "Shade", Armor: 5,
			Attacks: []catalog.AttackDef{
				{Damage: 3, Element: element.Fire},
				{Damage: 3, Element: element.Fire},
			},
			Abilities: []ability.Ability{ability.Amplify}},
		{ID: "revenant", Name: "Revenant", Armor: 6,
			Attacks:   []catalog.AttackDef{{Damage: 5, Element: element.Ice}},
			Abilities: []ability.Ability{ability.DuplicateWound, ability.LifeDrain}},
		{ID: "tyrant", Name: "Tyrant", Armor: 8,
			Attacks:   []catalog.AttackDef{{Damage: 6, Element: element.Physical}},
			Abilities: []ability.Ability{ability.ForcedDestroy}},
		{ID: "drake", Name: "Drake", Armor: 7,
			Attacks: []catalog.AttackDef{{Damage: 7, Element: element.Fire}}},
	}
	for _, e := range enemies {
		if err := reg.RegisterEnemy(e); err != nil {
			t.Fatalf("registering enemy %q: %v", e.ID, err)
		}
	}
	return reg
}

// testSnapshot builds a single-player snapshot in active combat against
// one instance of each named enemy.
func testSnapshot(t *testing.T, reg *catalog.Registry, enemyIDs ...string) *state.Snapshot {
	t.Helper()
	snap := &state.Snapshot{
		MatchID: "match-1",
		Players: []*state.Player{{
			ID:        "p1",
			Name:      "Rowan",
			Armor:     3,
			HandLimit: 5,
			Hand: []card.Card{
				{ID: "swift-strike", Kind: card.KindAction},
				{ID: "rally", Kind: card.KindAction},
			},
		}},
	}

	var instances []*state.EnemyInstance
	for _, id := range enemyIDs {
		def, ok := reg.Enemy(id)
		if !ok {
			t.Fatalf("enemy %q not in registry", id)
		}
		inst, err := state.NewEnemyInstance(def)
		if err != nil {
			t.Fatalf("creating enemy instance: %v", err)
		}
		instances = append(instances, inst)
	}
	if err := snap.StartCombat(instances); err != nil {
		t.Fatalf("starting combat: %v", err)
	}
	return snap
}

func addUnit(t *testing.T, snap *state.Snapshot, defID string) string {
	t.Helper()
	u := state.NewUnitInstance(defID)
	snap.Players[0].Units = append(snap.Players[0].Units, u)
	return u.InstanceID
}

func idx(i int) *int { return &i }

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func findEvent(t *testing.T, events []Event, typ EventType) Event {
	t.Helper()
	for _, e := range events {
		if e.Type == typ {
			return e
		}
	}
	t.Fatalf("no %s event in %v", typ, eventTypes(events))
	return Event{}
}

func countEvents(events []Event, typ EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestAssignDamageDefaultsToHero(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	enemy := snap.Combat.Enemies[0]

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	// 4 damage against armor 3 rounds up to 2 wounds.
	p := next.Player("p1")
	if got := card.CountWounds(p.Hand); got != 2 {
		t.Errorf("wounds in hand = %d, want 2", got)
	}
	if p.WoundsThisCombat != 2 {
		t.Errorf("WoundsThisCombat = %d, want 2", p.WoundsThisCombat)
	}
	if len(events) != 1 || events[0].Type != EventDamageAssigned {
		t.Fatalf("events = %v, want [damage-assigned]", eventTypes(events))
	}
	da := events[0].DamageAssigned
	if da.Damage != 4 || da.WoundsTaken != 2 || da.AttackIndex != 0 {
		t.Errorf("DamageAssigned = %+v, want damage=4 wounds=2 index=0", da)
	}

	ne := next.Enemy(enemy.InstanceID)
	if !ne.Assigned[0] || !ne.AttacksResolved {
		t.Errorf("bookkeeping: assigned=%v resolved=%v, want true/true", ne.Assigned[0], ne.AttacksResolved)
	}
}

func TestAssignDamageDoesNotMutateInput(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	addUnit(t, snap, "footman")

	before, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshalling snapshot: %v", err)
	}

	_, _, err = engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: snap.Combat.Enemies[0].InstanceID,
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	after, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshalling snapshot: %v", err)
	}
	if string(before) != string(after) {
		t.Error("input snapshot was mutated by AssignDamage")
	}
}

func TestAmplifyAppliesBeforeReduction(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "shade")
	snap.Combat.DamageReductions = []state.DamageReduction{
		{Element: element.Fire, Amount: 2},
	}

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: snap.Combat.Enemies[0].InstanceID,
		AttackIndex:     idx(0),
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	// 3 base doubles to 6, then the reduction takes it to 4. The wrong
	// order (3-2=1, doubled to 2) would give 1 wound instead of 2.
	da := findEvent(t, events, EventDamageAssigned).DamageAssigned
	if da.Damage != 4 {
		t.Errorf("damage = %d, want 4 (amplify before reduction)", da.Damage)
	}
	if da.WoundsTaken != 2 {
		t.Errorf("wounds = %d, want 2", da.WoundsTaken)
	}
	if len(next.Combat.DamageReductions) != 0 {
		t.Errorf("reduction not consumed: %v", next.Combat.DamageReductions)
	}
}

func TestReductionFloorsAtZero(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	snap.Combat.DamageReductions = []state.DamageReduction{
		{AnyElement: true, Amount: 10},
	}

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: snap.Combat.Enemies[0].InstanceID,
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	da := findEvent(t, events, EventDamageAssigned).DamageAssigned
	if da.Damage != 0 || da.WoundsTaken != 0 {
		t.Errorf("damage=%d wounds=%d, want 0/0", da.Damage, da.WoundsTaken)
	}
	if got := card.CountWounds(next.Player("p1").Hand); got != 0 {
		t.Errorf("wounds in hand = %d, want 0", got)
	}
	// Sub-attack still counts as assigned even at zero damage.
	if !next.Combat.Enemies[0].Assigned[0] {
		t.Error("zero-damage attack not marked assigned")
	}
}

func TestReductionElementMustMatch(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	snap.Combat.DamageReductions = []state.DamageReduction{
		{Element: element.Fire, Amount: 2},
	}

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: snap.Combat.Enemies[0].InstanceID,
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	if da := findEvent(t, events, EventDamageAssigned).DamageAssigned; da.Damage != 4 {
		t.Errorf("damage = %d, want 4 (fire reduction must not apply to physical)", da.Damage)
	}
	if len(next.Combat.DamageReductions) != 1 {
		t.Error("non-matching reduction was consumed")
	}
}

func TestElementOverrideChangesResistance(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	unitID := addUnit(t, snap, "warden")
	enemy := snap.Combat.Enemies[0]
	snap.Combat.ElementOverrides = map[string]element.Element{
		enemy.InstanceID: element.Fire,
	}

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		Assignments:     []Assignment{{Target: TargetUnit, Amount: 4, UnitInstanceID: unitID}},
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	// The warden resists physical; the override to fire bypasses the
	// resistance path, so the unit wounds normally (armor 3 absorbs 3,
	// 1 remains, converting to 1 hero wound).
	if countEvents(events, EventUnitWounded) != 1 {
		t.Fatalf("events = %v, want a unit-wounded", eventTypes(events))
	}
	u := next.Player("p1").Unit(unitID)
	if !u.Wounded || u.ResistanceUsed {
		t.Errorf("unit wounded=%v resistanceUsed=%v, want true/false", u.Wounded, u.ResistanceUsed)
	}
	if da := findEvent(t, events, EventDamageAssigned).DamageAssigned; da.WoundsTaken != 1 {
		t.Errorf("hero wounds = %d, want 1 (overflow from unit)", da.WoundsTaken)
	}
}

func TestNullifiedAmplifyDoesNotDouble(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "shade")
	enemy := snap.Combat.Enemies[0]
	snap.Combat.Nullified = map[string][]ability.Ability{
		enemy.InstanceID: {ability.Amplify},
	}

	_, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		AttackIndex:     idx(0),
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	if da := findEvent(t, events, EventDamageAssigned).DamageAssigned; da.Damage != 3 {
		t.Errorf("damage = %d, want 3 (amplify nullified)", da.Damage)
	}
}

func TestUnitOverflowConvertsToHeroWounds(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	unitID := addUnit(t, snap, "footman")
	enemy := snap.Combat.Enemies[0]

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		Assignments:     []Assignment{{Target: TargetUnit, Amount: 4, UnitInstanceID: unitID}},
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	// Footman armor 2 absorbs 2 and wounds; the remaining 2 convert to
	// ceil(2/3) = 1 hero wound.
	uw := findEvent(t, events, EventUnitWounded).UnitWounded
	if uw.DamageAbsorbed != 2 {
		t.Errorf("absorbed = %d, want 2", uw.DamageAbsorbed)
	}
	da := findEvent(t, events, EventDamageAssigned).DamageAssigned
	if da.WoundsTaken != 1 {
		t.Errorf("hero wounds = %d, want 1", da.WoundsTaken)
	}
	if !next.Combat.InvolvedUnits[unitID] {
		t.Error("unit not marked involved")
	}
}

func TestSecondAssignmentSeesFirstWound(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	unitID := addUnit(t, snap, "footman")
	enemy := snap.Combat.Enemies[0]

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		Assignments: []Assignment{
			{Target: TargetUnit, Amount: 2, UnitInstanceID: unitID},
			{Target: TargetUnit, Amount: 2, UnitInstanceID: unitID},
		},
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	// First assignment wounds the unit; the second must observe that
	// wound and destroy it.
	if countEvents(events, EventUnitWounded) != 1 || countEvents(events, EventUnitDestroyed) != 1 {
		t.Fatalf("events = %v, want one wound then one destroy", eventTypes(events))
	}
	ud := findEvent(t, events, EventUnitDestroyed).UnitDestroyed
	if ud.Reason != ReasonDoubleWound {
		t.Errorf("reason = %q, want %q", ud.Reason, ReasonDoubleWound)
	}
	if next.Player("p1").Unit(unitID) != nil {
		t.Error("destroyed unit still on roster")
	}
}

func TestWardInterceptsExactlyOnce(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	unitID := addUnit(t, snap, "footman")
	p := snap.Players[0]
	p.Wards = append(p.Wards, &state.AttachedWard{WardID: "ward-1", UnitInstanceID: unitID})
	enemy := snap.Combat.Enemies[0]

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		Assignments: []Assignment{
			{Target: TargetUnit, Amount: 2, UnitInstanceID: unitID},
			{Target: TargetUnit, Amount: 2, UnitInstanceID: unitID},
		},
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	// The ward negates the first assignment entirely; the second then
	// processes normally and wounds the unit.
	types := eventTypes(events)
	if types[0] != EventWardPreventedWound || types[1] != EventUnitWounded {
		t.Fatalf("events = %v, want ward-prevented-wound then unit-wounded", types)
	}
	np := next.Player("p1")
	if !np.Wards[0].Used {
		t.Error("ward not marked used")
	}
	if u := np.Unit(unitID); !u.Wounded {
		t.Error("second assignment should wound through the spent ward")
	}
}

func TestForcedDestroyUpgradesUnitWound(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "tyrant")
	unitID := addUnit(t, snap, "footman")
	enemy := snap.Combat.Enemies[0]

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		Assignments: []Assignment{
			{Target: TargetUnit, Amount: 2, UnitInstanceID: unitID},
			{Target: TargetHero, Amount: 4},
		},
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	ud := findEvent(t, events, EventUnitDestroyed).UnitDestroyed
	if ud.Reason != ReasonForcedDestroy {
		t.Errorf("reason = %q, want %q", ud.Reason, ReasonForcedDestroy)
	}

	// The hero took wounds, so the forced-discard side effect empties
	// the hand of action cards.
	fd := findEvent(t, events, EventForcedDiscard).ForcedDiscard
	if fd.CardsDiscarded != 2 {
		t.Errorf("cards discarded = %d, want 2", fd.CardsDiscarded)
	}
	np := next.Player("p1")
	if np.NonWoundHandCount() != 0 {
		t.Errorf("non-wound cards left in hand = %d, want 0", np.NonWoundHandCount())
	}
}

func TestDuplicateWoundMirrorsToDiscard(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "revenant")
	enemy := snap.Combat.Enemies[0]

	next, _, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	// 5 ice against armor 3 is 2 wounds to hand, mirrored as 2 more
	// into discard. Only the hand wounds count toward knockout.
	np := next.Player("p1")
	if got := card.CountWounds(np.Hand); got != 2 {
		t.Errorf("hand wounds = %d, want 2", got)
	}
	if got := card.CountWounds(np.Discard); got != 2 {
		t.Errorf("discard wounds = %d, want 2", got)
	}
	if np.WoundsThisCombat != 2 {
		t.Errorf("WoundsThisCombat = %d, want 2 (mirrored wounds excluded)", np.WoundsThisCombat)
	}
}

func TestLifeDrainAccruesWoundsAndUnitEvents(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "revenant")
	unitID := addUnit(t, snap, "footman")
	enemy := snap.Combat.Enemies[0]

	next, _, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		Assignments: []Assignment{
			{Target: TargetUnit, Amount: 2, UnitInstanceID: unitID},
			{Target: TargetHero, Amount: 3},
		},
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}

	// Duplicate-wound destroys the footman (one unit event); the hero
	// assignment gives ceil(3/3) = 1 wound. Drain accrues both.
	ne := next.Enemy(enemy.InstanceID)
	if ne.DrainBonus != 2 {
		t.Errorf("DrainBonus = %d, want 2", ne.DrainBonus)
	}
}

func TestKnockoutEmittedOncePerCombat(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf", "wolf")
	snap.Players[0].HandLimit = 3
	first := snap.Combat.Enemies[0].InstanceID
	second := snap.Combat.Enemies[1].InstanceID

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: first,
	})
	if err != nil {
		t.Fatalf("first AssignDamage: %v", err)
	}
	if countEvents(events, EventKnockout) != 0 {
		t.Fatal("knockout fired below threshold")
	}

	next, events, err = engine.AssignDamage(next, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: second,
	})
	if err != nil {
		t.Fatalf("second AssignDamage: %v", err)
	}

	if countEvents(events, EventKnockout) != 1 {
		t.Fatalf("events = %v, want exactly one knockout", eventTypes(events))
	}
	ko := findEvent(t, events, EventKnockout).Knockout
	if ko.WoundsThisCombat != 4 {
		t.Errorf("knockout counter = %d, want 4", ko.WoundsThisCombat)
	}
	np := next.Player("p1")
	if !np.KnockedOut {
		t.Error("player not knocked out")
	}
	if np.NonWoundHandCount() != 0 {
		t.Error("knockout should discard non-wound cards")
	}
}

func TestWoundCounterKeepsIncrementingAfterKnockout(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	snap.Players[0].HandLimit = 1
	snap.Players[0].KnockedOut = false

	next, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: snap.Combat.Enemies[0].InstanceID,
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}
	if countEvents(events, EventKnockout) != 1 {
		t.Fatal("expected knockout")
	}

	// Simulate a later round: re-open the sub-attack by hand and deal
	// more damage. The counter advances but no second knockout fires.
	ne := next.Enemy(snap.Combat.Enemies[0].InstanceID)
	ne.Assigned[0] = false
	ne.RecomputeResolved()

	next2, events2, err := engine.AssignDamage(next, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: ne.InstanceID,
	})
	if err != nil {
		t.Fatalf("second AssignDamage: %v", err)
	}
	if countEvents(events2, EventKnockout) != 0 {
		t.Error("knockout fired twice in one combat")
	}
	if got := next2.Player("p1").WoundsThisCombat; got != 4 {
		t.Errorf("WoundsThisCombat = %d, want 4", got)
	}
}

func TestAutoSelectSkipsBlockedAndAssigned(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "shade")
	enemy := snap.Combat.Enemies[0]
	enemy.Blocked[0] = true

	_, events, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}
	if da := findEvent(t, events, EventDamageAssigned).DamageAssigned; da.AttackIndex != 1 {
		t.Errorf("auto-selected index = %d, want 1", da.AttackIndex)
	}
}

func TestResolvedOnlyWhenAllUnblockedAssigned(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "shade")
	enemy := snap.Combat.Enemies[0]

	next, _, err := engine.AssignDamage(snap, AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		AttackIndex:     idx(0),
	})
	if err != nil {
		t.Fatalf("AssignDamage: %v", err)
	}
	if next.Enemy(enemy.InstanceID).AttacksResolved {
		t.Error("resolved with an open sub-attack remaining")
	}

	next, events, err := engine.BlockAttack(next, BlockAttackCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		AttackIndex:     idx(1),
	})
	if err != nil {
		t.Fatalf("BlockAttack: %v", err)
	}
	if len(events) != 1 || events[0].Type != EventAttackBlocked {
		t.Fatalf("events = %v, want [attack-blocked]", eventTypes(events))
	}
	if !next.Enemy(enemy.InstanceID).AttacksResolved {
		t.Error("blocking the last open sub-attack should resolve the enemy")
	}
}

func TestValidationFailures(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)

	base := testSnapshot(t, reg, "wolf")
	enemyID := base.Combat.Enemies[0].InstanceID
	unitID := addUnit(t, base, "footman")

	tests := []struct {
		name    string
		mutate  func(s *state.Snapshot)
		cmd     AssignDamageCommand
		wantErr error
	}{
		{
			name:    "no active combat",
			mutate:  func(s *state.Snapshot) { s.EndCombat() },
			cmd:     AssignDamageCommand{PlayerID: "p1", EnemyInstanceID: enemyID},
			wantErr: ErrNoActiveCombat,
		},
		{
			name:    "unknown player",
			cmd:     AssignDamageCommand{PlayerID: "ghost", EnemyInstanceID: enemyID},
			wantErr: ErrUnknownPlayer,
		},
		{
			name:    "unknown enemy",
			cmd:     AssignDamageCommand{PlayerID: "p1", EnemyInstanceID: "nope"},
			wantErr: ErrUnknownEnemy,
		},
		{
			name:    "defeated enemy",
			mutate:  func(s *state.Snapshot) { s.Combat.Enemies[0].Defeated = true },
			cmd:     AssignDamageCommand{PlayerID: "p1", EnemyInstanceID: enemyID},
			wantErr: ErrEnemyDefeated,
		},
		{
			name:    "index out of range",
			cmd:     AssignDamageCommand{PlayerID: "p1", EnemyInstanceID: enemyID, AttackIndex: idx(5)},
			wantErr: ErrAttackIndexOutOfRange,
		},
		{
			name:    "negative index",
			cmd:     AssignDamageCommand{PlayerID: "p1", EnemyInstanceID: enemyID, AttackIndex: idx(-1)},
			wantErr: ErrAttackIndexOutOfRange,
		},
		{
			name:    "blocked index",
			mutate:  func(s *state.Snapshot) { s.Combat.Enemies[0].Blocked[0] = true },
			cmd:     AssignDamageCommand{PlayerID: "p1", EnemyInstanceID: enemyID, AttackIndex: idx(0)},
			wantErr: ErrAttackBlocked,
		},
		{
			name:    "already assigned index",
			mutate:  func(s *state.Snapshot) { s.Combat.Enemies[0].Assigned[0] = true },
			cmd:     AssignDamageCommand{PlayerID: "p1", EnemyInstanceID: enemyID, AttackIndex: idx(0)},
			wantErr: ErrAttackAlreadyAssigned,
		},
		{
			name:    "no assignable attack",
			mutate:  func(s *state.Snapshot) { s.Combat.Enemies[0].Assigned[0] = true },
			cmd:     AssignDamageCommand{PlayerID: "p1", EnemyInstanceID: enemyID},
			wantErr: ErrNoAssignableAttack,
		},
		{
			name: "unknown unit",
			cmd: AssignDamageCommand{
				PlayerID: "p1", EnemyInstanceID: enemyID,
				Assignments: []Assignment{{Target: TargetUnit, Amount: 2, UnitInstanceID: "nope"}},
			},
			wantErr: ErrUnknownUnit,
		},
		{
			name: "invalid target kind",
			cmd: AssignDamageCommand{
				PlayerID: "p1", EnemyInstanceID: enemyID,
				Assignments: []Assignment{{Target: "pet", Amount: 2}},
			},
			wantErr: ErrInvalidAssignment,
		},
		{
			name: "negative hero amount",
			cmd: AssignDamageCommand{
				PlayerID: "p1", EnemyInstanceID: enemyID,
				Assignments: []Assignment{{Target: TargetHero, Amount: -1}},
			},
			wantErr: ErrInvalidAssignment,
		},
		{
			name: "negative unit amount",
			cmd: AssignDamageCommand{
				PlayerID: "p1", EnemyInstanceID: enemyID,
				Assignments: []Assignment{{Target: TargetUnit, Amount: -1, UnitInstanceID: unitID}},
			},
			wantErr: ErrInvalidAssignment,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := base.Clone()
			if tc.mutate != nil {
				tc.mutate(snap)
			}
			_, _, err := engine.AssignDamage(snap, tc.cmd)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestUndoAssignDamageAlwaysFails(t *testing.T) {
	engine := NewEngine(testRegistry(t))
	if err := engine.UndoAssignDamage(); !errors.Is(err, ErrUndoUnsupported) {
		t.Errorf("err = %v, want %v", err, ErrUndoUnsupported)
	}
}

func TestBlockAttackValidation(t *testing.T) {
	reg := testRegistry(t)
	engine := NewEngine(reg)
	snap := testSnapshot(t, reg, "wolf")
	enemy := snap.Combat.Enemies[0]
	enemy.Blocked[0] = true

	_, _, err := engine.BlockAttack(snap, BlockAttackCommand{
		PlayerID:        "p1",
		EnemyInstanceID: enemy.InstanceID,
		AttackIndex:     idx(0),
	})
	if !errors.Is(err, ErrAttackBlocked) {
		t.Errorf("err = %v, want %v", err, ErrAttackBlocked)
	}
}
