package gameserver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greyhaven/thornwall/internal/game/card"
	"github.com/greyhaven/thornwall/internal/game/catalog"
	"github.com/greyhaven/thornwall/internal/game/combat"
	"github.com/greyhaven/thornwall/internal/game/element"
	"github.com/greyhaven/thornwall/internal/game/state"
	"github.com/greyhaven/thornwall/internal/storage/postgres"
)

// fakeJournal records appends in memory and can be primed to fail.
type fakeJournal struct {
	entries []postgres.JournalEntry
	failOn  error
}

func (f *fakeJournal) Append(_ context.Context, entry postgres.JournalEntry) error {
	if f.failOn != nil {
		return f.failOn
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeJournal) LoadMatch(_ context.Context, matchID string) ([]postgres.JournalEntry, error) {
	var out []postgres.JournalEntry
	for _, e := range f.entries {
		if e.MatchID == matchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func testEngine(t *testing.T) *combat.Engine {
	t.Helper()
	reg := catalog.NewRegistry()
	require.NoError(t, reg.RegisterEnemy(&catalog.EnemyDef{
		ID:   "wolf",
		Name: "Wolf",
		Attacks: []catalog.AttackDef{
			{Damage: 4, Element: element.Physical},
			{Damage: 2, Element: element.Physical},
		},
	}))
	return combat.NewEngine(reg)
}

func matchSnapshot(t *testing.T, eng *combat.Engine, matchID string) *state.Snapshot {
	t.Helper()
	snap := &state.Snapshot{
		MatchID: matchID,
		Players: []*state.Player{{
			ID:        "p1",
			Name:      "Rowan",
			Armor:     3,
			HandLimit: 5,
			Hand:      []card.Card{{ID: "rally", Kind: card.KindAction}},
		}},
	}
	inst := &state.EnemyInstance{
		InstanceID: "e1",
		DefID:      "wolf",
		Blocked:    make([]bool, 2),
		Assigned:   make([]bool, 2),
	}
	require.NoError(t, snap.StartCombat([]*state.EnemyInstance{inst}))
	return snap
}

func newTestManager(t *testing.T, journal Journal) *MatchManager {
	t.Helper()
	eng := testEngine(t)
	m := NewMatchManager(eng, journal, nil, zap.NewNop())
	require.NoError(t, m.CreateMatch(matchSnapshot(t, eng, "m1")))
	return m
}

func TestCreateMatchRejectsDuplicate(t *testing.T) {
	m := newTestManager(t, nil)
	err := m.CreateMatch(&state.Snapshot{MatchID: "m1"})
	assert.ErrorIs(t, err, ErrMatchExists)
}

func TestSnapshotReturnsIsolatedCopy(t *testing.T) {
	m := newTestManager(t, nil)

	snap, err := m.Snapshot("m1")
	require.NoError(t, err)
	snap.Players[0].WoundsThisCombat = 99

	again, err := m.Snapshot("m1")
	require.NoError(t, err)
	assert.Zero(t, again.Players[0].WoundsThisCombat)

	_, err = m.Snapshot("nope")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestAssignDamageAdvancesAndJournals(t *testing.T) {
	journal := &fakeJournal{}
	m := newTestManager(t, journal)
	ctx := context.Background()

	result, err := m.AssignDamage(ctx, "m1", combat.AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: "e1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Events)
	assert.Equal(t, 2, result.State.Players[0].WoundsThisCombat)

	// The next command sees the mutated state: attack 0 is taken, so
	// auto-select lands on attack 1.
	result, err = m.AssignDamage(ctx, "m1", combat.AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: "e1",
	})
	require.NoError(t, err)
	assert.True(t, result.State.Combat.Enemies[0].AttacksResolved)

	require.Len(t, journal.entries, 2)
	assert.Equal(t, int64(1), journal.entries[0].Seq)
	assert.Equal(t, int64(2), journal.entries[1].Seq)
	assert.Equal(t, "assign-damage", journal.entries[0].CommandType)
	assert.JSONEq(t, `{"playerId":"p1","enemyInstanceId":"e1"}`, string(journal.entries[0].Command))
}

func TestBlockAttackJournals(t *testing.T) {
	journal := &fakeJournal{}
	m := newTestManager(t, journal)

	result, err := m.BlockAttack(context.Background(), "m1", combat.BlockAttackCommand{
		PlayerID:        "p1",
		EnemyInstanceID: "e1",
	})
	require.NoError(t, err)
	assert.True(t, result.State.Combat.Enemies[0].Blocked[0])

	require.Len(t, journal.entries, 1)
	assert.Equal(t, "block-attack", journal.entries[0].CommandType)
}

func TestRejectedCommandLeavesStateUntouched(t *testing.T) {
	journal := &fakeJournal{}
	m := newTestManager(t, journal)

	_, err := m.AssignDamage(context.Background(), "m1", combat.AssignDamageCommand{
		PlayerID:        "ghost",
		EnemyInstanceID: "e1",
	})
	assert.ErrorIs(t, err, combat.ErrUnknownPlayer)
	assert.Empty(t, journal.entries)

	snap, err := m.Snapshot("m1")
	require.NoError(t, err)
	assert.Zero(t, snap.Players[0].WoundsThisCombat)
}

func TestJournalFailureLeavesStateUntouched(t *testing.T) {
	boom := errors.New("database unreachable")
	m := newTestManager(t, &fakeJournal{failOn: boom})

	_, err := m.AssignDamage(context.Background(), "m1", combat.AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: "e1",
	})
	assert.ErrorIs(t, err, boom)

	snap, err := m.Snapshot("m1")
	require.NoError(t, err)
	assert.Zero(t, snap.Players[0].WoundsThisCombat)
	assert.False(t, snap.Combat.Enemies[0].Assigned[0])
}

func TestHistory(t *testing.T) {
	journal := &fakeJournal{}
	m := newTestManager(t, journal)
	ctx := context.Background()

	_, err := m.AssignDamage(ctx, "m1", combat.AssignDamageCommand{
		PlayerID:        "p1",
		EnemyInstanceID: "e1",
	})
	require.NoError(t, err)

	entries, err := m.History(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = m.History(ctx, "nope")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestHistoryWithoutJournal(t *testing.T) {
	m := newTestManager(t, nil)
	_, err := m.History(context.Background(), "m1")
	assert.Error(t, err)
}
