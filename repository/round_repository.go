package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"croupier/database"
	"croupier/games"
	"croupier/models"
)

// RoundRepository implements the service.RoundRepository interface
type RoundRepository struct {
	q queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) *RoundRepository {
	return &RoundRepository{q: db.Pool}
}

// newRoundRepositoryWithTx creates a new round repository with a transaction
func newRoundRepositoryWithTx(tx queryable) *RoundRepository {
	return &RoundRepository{q: tx}
}

const roundColumns = `id, uuid, room_id, day, day_seq, phase, outcome,
	started_at, reveal_started_at, settled_at, payout_settled, created_at`

func scanRound(row pgx.Row) (*models.Round, error) {
	var round models.Round
	var outcomeJSON []byte
	err := row.Scan(
		&round.ID,
		&round.UUID,
		&round.RoomID,
		&round.Day,
		&round.DaySeq,
		&round.Phase,
		&outcomeJSON,
		&round.StartedAt,
		&round.RevealStartedAt,
		&round.SettledAt,
		&round.PayoutSettled,
		&round.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(outcomeJSON) > 0 {
		var outcome games.Outcome
		if err := json.Unmarshal(outcomeJSON, &outcome); err != nil {
			return nil, fmt.Errorf("failed to unmarshal round outcome: %w", err)
		}
		round.Outcome = &outcome
	}
	return &round, nil
}

// LockRoom takes the per-room advisory lock for the duration of the current
// transaction. Advisory locks serialise phase transitions without blocking
// reads of the round row itself.
func (r *RoundRepository) LockRoom(ctx context.Context, roomID int64) error {
	_, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, roomID)
	if err != nil {
		return fmt.Errorf("failed to lock room %d: %w", roomID, err)
	}
	return nil
}

// GetOpenForRoom returns the room's non-settled round, or nil. The partial
// unique index guarantees at most one exists.
func (r *RoundRepository) GetOpenForRoom(ctx context.Context, roomID int64) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE room_id = $1 AND phase <> 'settled'`

	round, err := scanRound(r.q.QueryRow(ctx, query, roomID))
	if err != nil {
		return nil, fmt.Errorf("failed to get open round for room %d: %w", roomID, err)
	}
	return round, nil
}

// GetByID retrieves a round by ID
func (r *RoundRepository) GetByID(ctx context.Context, roundID int64) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

	round, err := scanRound(r.q.QueryRow(ctx, query, roundID))
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", roundID, err)
	}
	return round, nil
}

// GetByUUID retrieves a round by its public UUID
func (r *RoundRepository) GetByUUID(ctx context.Context, roundUUID uuid.UUID) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE uuid = $1`

	round, err := scanRound(r.q.QueryRow(ctx, query, roundUUID))
	if err != nil {
		return nil, fmt.Errorf("failed to get round %s: %w", roundUUID, err)
	}
	return round, nil
}

// Create inserts a fresh betting-phase round, assigning the next day-scoped
// sequence number. Callers hold the room's advisory lock, so the MAX+1
// subquery cannot race another insert for the same room.
func (r *RoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (uuid, room_id, day, day_seq, phase, started_at)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(day_seq), 0) + 1 FROM rounds WHERE room_id = $2 AND day = $3),
			$4, $5)
		RETURNING id, day_seq, created_at`

	err := r.q.QueryRow(ctx, query,
		round.UUID,
		round.RoomID,
		round.Day,
		round.Phase,
		round.StartedAt,
	).Scan(&round.ID, &round.DaySeq, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create round for room %d: %w", round.RoomID, err)
	}
	return nil
}

// MarkRevealing advances betting -> revealing and writes the outcome. The
// phase predicate makes the transition exactly-once: a second caller matches
// zero rows and gets false back.
func (r *RoundRepository) MarkRevealing(ctx context.Context, roundID int64, outcome *games.Outcome, revealStartedAt time.Time) (bool, error) {
	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return false, fmt.Errorf("failed to marshal outcome: %w", err)
	}

	query := `
		UPDATE rounds
		SET phase = 'revealing', outcome = $2, reveal_started_at = $3
		WHERE id = $1 AND phase = 'betting'`

	tag, err := r.q.Exec(ctx, query, roundID, outcomeJSON, revealStartedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark round %d revealing: %w", roundID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkSettled advances revealing -> settled and sets the payout flag, with
// the same exactly-once contract as MarkRevealing.
func (r *RoundRepository) MarkSettled(ctx context.Context, roundID int64, settledAt time.Time) (bool, error) {
	query := `
		UPDATE rounds
		SET phase = 'settled', payout_settled = TRUE, settled_at = $2
		WHERE id = $1 AND phase = 'revealing' AND NOT payout_settled`

	tag, err := r.q.Exec(ctx, query, roundID, settledAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark round %d settled: %w", roundID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// History returns the most recently settled rounds, newest first
func (r *RoundRepository) History(ctx context.Context, roomID int64, limit int) ([]*models.Round, error) {
	query := `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE room_id = $1 AND phase = 'settled'
		ORDER BY settled_at DESC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get round history for room %d: %w", roomID, err)
	}
	defer rows.Close()

	var rounds []*models.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round history: %w", err)
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}
