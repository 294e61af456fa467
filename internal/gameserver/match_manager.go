// Package gameserver exposes the combat engine over HTTP and
// websockets. It owns the in-memory match registry: one latest
// snapshot per match, with command application serialised per match so
// the engine always sees the newest state.
package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/greyhaven/thornwall/internal/game/combat"
	"github.com/greyhaven/thornwall/internal/game/state"
	"github.com/greyhaven/thornwall/internal/storage/postgres"
)

// ErrMatchNotFound is returned when a match id is not registered.
var ErrMatchNotFound = errors.New("match not found")

// ErrMatchExists is returned when creating a match with an id that is
// already registered.
var ErrMatchExists = errors.New("match already exists")

// Journal is the subset of the journal repository the manager needs.
type Journal interface {
	Append(ctx context.Context, entry postgres.JournalEntry) error
	LoadMatch(ctx context.Context, matchID string) ([]postgres.JournalEntry, error)
}

// CommandResult is what a successfully applied command returns to the
// transport layer.
type CommandResult struct {
	State  *state.Snapshot `json:"state"`
	Events []combat.Event  `json:"events"`
}

type match struct {
	mu       sync.Mutex
	snapshot *state.Snapshot
	seq      int64
}

// MatchManager tracks all live matches and applies commands to them.
// All methods are safe for concurrent use; commands against the same
// match are serialised.
type MatchManager struct {
	engine  *combat.Engine
	journal Journal
	hub     *Hub
	logger  *zap.Logger

	mu      sync.RWMutex
	matches map[string]*match
}

// NewMatchManager creates an empty MatchManager.
//
// Precondition: engine and logger must be non-nil; journal may be nil
// (journalling disabled); hub may be nil (no event broadcast).
func NewMatchManager(engine *combat.Engine, journal Journal, hub *Hub, logger *zap.Logger) *MatchManager {
	return &MatchManager{
		engine:  engine,
		journal: journal,
		hub:     hub,
		logger:  logger,
		matches: make(map[string]*match),
	}
}

// CreateMatch registers a new match with its initial snapshot.
//
// Precondition: snap must be non-nil with a non-empty MatchID.
// Postcondition: Returns ErrMatchExists if the id is already registered.
func (m *MatchManager) CreateMatch(snap *state.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.matches[snap.MatchID]; exists {
		return fmt.Errorf("%w: %q", ErrMatchExists, snap.MatchID)
	}
	m.matches[snap.MatchID] = &match{snapshot: snap}
	return nil
}

// Snapshot returns a deep copy of the latest snapshot for the match.
//
// Postcondition: Mutating the returned snapshot never affects the
// registered state.
func (m *MatchManager) Snapshot(matchID string) (*state.Snapshot, error) {
	mt, err := m.get(matchID)
	if err != nil {
		return nil, err
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.snapshot.Clone(), nil
}

// AssignDamage applies an AssignDamage command to the match's latest
// snapshot, journals it, and broadcasts the resulting events.
//
// Postcondition: On success the match's registered snapshot is the new
// one; on any error the registered snapshot is unchanged.
func (m *MatchManager) AssignDamage(ctx context.Context, matchID string, cmd combat.AssignDamageCommand) (CommandResult, error) {
	return m.apply(ctx, matchID, "assign-damage", cmd, func(snap *state.Snapshot) (*state.Snapshot, []combat.Event, error) {
		return m.engine.AssignDamage(snap, cmd)
	})
}

// BlockAttack applies a BlockAttack command to the match's latest
// snapshot, journals it, and broadcasts the resulting events.
func (m *MatchManager) BlockAttack(ctx context.Context, matchID string, cmd combat.BlockAttackCommand) (CommandResult, error) {
	return m.apply(ctx, matchID, "block-attack", cmd, func(snap *state.Snapshot) (*state.Snapshot, []combat.Event, error) {
		return m.engine.BlockAttack(snap, cmd)
	})
}

// History returns the ordered journal for a match.
//
// Precondition: journalling must be enabled.
func (m *MatchManager) History(ctx context.Context, matchID string) ([]postgres.JournalEntry, error) {
	if _, err := m.get(matchID); err != nil {
		return nil, err
	}
	if m.journal == nil {
		return nil, errors.New("journalling disabled")
	}
	return m.journal.LoadMatch(ctx, matchID)
}

func (m *MatchManager) get(matchID string) (*match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMatchNotFound, matchID)
	}
	return mt, nil
}

func (m *MatchManager) apply(ctx context.Context, matchID, commandType string, cmd any, run func(*state.Snapshot) (*state.Snapshot, []combat.Event, error)) (CommandResult, error) {
	mt, err := m.get(matchID)
	if err != nil {
		return CommandResult{}, err
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	next, events, err := run(mt.snapshot)
	if err != nil {
		// Engine validation failures are integration bugs, not game
		// outcomes; surface them loudly.
		m.logger.Error("command rejected",
			zap.String("match_id", matchID),
			zap.String("command", commandType),
			zap.Error(err),
		)
		return CommandResult{}, err
	}

	// Journal before committing: a failed append must leave the
	// registered snapshot untouched.
	seq := mt.seq + 1
	if m.journal != nil {
		cmdJSON, err := json.Marshal(cmd)
		if err != nil {
			return CommandResult{}, fmt.Errorf("marshalling command: %w", err)
		}
		evJSON, err := json.Marshal(events)
		if err != nil {
			return CommandResult{}, fmt.Errorf("marshalling events: %w", err)
		}
		entry := postgres.JournalEntry{
			MatchID:     matchID,
			Seq:         seq,
			CommandType: commandType,
			Command:     cmdJSON,
			Events:      evJSON,
		}
		if err := m.journal.Append(ctx, entry); err != nil {
			m.logger.Error("journal append failed",
				zap.String("match_id", matchID),
				zap.Int64("seq", seq),
				zap.Error(err),
			)
			return CommandResult{}, err
		}
	}

	mt.snapshot = next
	mt.seq = seq

	if m.hub != nil {
		m.hub.Broadcast(matchID, events)
	}

	m.logger.Info("command applied",
		zap.String("match_id", matchID),
		zap.String("command", commandType),
		zap.Int64("seq", mt.seq),
		zap.Int("events", len(events)),
	)
	return CommandResult{State: next, Events: events}, nil
}
