package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateSequence is returned when appending a journal entry with
// a (match, sequence) pair that already exists. Command resolution is
// deterministic, so a duplicate append is always a coordination bug in
// the caller.
var ErrDuplicateSequence = errors.New("journal sequence already written")

// JournalEntry is one accepted command and the events it produced.
// Determinism of the engine makes the journal a full replay log: folding
// the commands over the initial snapshot reproduces every intermediate
// state byte for byte.
type JournalEntry struct {
	MatchID     string          `json:"matchId"`
	Seq         int64           `json:"seq"`
	CommandType string          `json:"commandType"`
	Command     json.RawMessage `json:"command"`
	Events      json.RawMessage `json:"events"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// JournalRepository persists the per-match command journal.
type JournalRepository struct {
	db *pgxpool.Pool
}

// NewJournalRepository creates a JournalRepository backed by the given
// pool.
//
// Precondition: db must be a valid, open connection pool.
func NewJournalRepository(db *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{db: db}
}

// Append inserts one journal entry.
//
// Precondition: matchID must be non-empty; seq must be the next unused
// sequence number for the match; command and events must be valid JSON.
// Postcondition: Returns ErrDuplicateSequence if (matchID, seq) is
// already journalled.
func (r *JournalRepository) Append(ctx context.Context, entry JournalEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO command_journal (match_id, seq, command_type, command, events)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.MatchID, entry.Seq, entry.CommandType, entry.Command, entry.Events,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: match %q seq %d", ErrDuplicateSequence, entry.MatchID, entry.Seq)
		}
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// LoadMatch returns the full ordered journal for a match.
//
// Precondition: matchID must be non-empty.
// Postcondition: Returns entries ordered by seq ascending (may be
// empty) or a non-nil error.
func (r *JournalRepository) LoadMatch(ctx context.Context, matchID string) ([]JournalEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT match_id, seq, command_type, command, events, created_at
		FROM command_journal WHERE match_id = $1 ORDER BY seq ASC`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading journal for match %q: %w", matchID, err)
	}
	defer rows.Close()

	entries := make([]JournalEntry, 0)
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.MatchID, &e.Seq, &e.CommandType, &e.Command, &e.Events, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LatestSeq returns the highest journalled sequence number for a
// match, or 0 when the match has no entries.
func (r *JournalRepository) LatestSeq(ctx context.Context, matchID string) (int64, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM command_journal WHERE match_id = $1`,
		matchID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("querying latest seq for match %q: %w", matchID, err)
	}
	return seq, nil
}
