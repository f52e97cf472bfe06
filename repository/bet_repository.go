package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"croupier/database"
	"croupier/models"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `id, uuid, round_id, user_id, kind, amount, ledger_entry_id, created_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.UUID,
		&bet.RoundID,
		&bet.UserID,
		&bet.Kind,
		&bet.Amount,
		&bet.LedgerEntryID,
		&bet.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// Create inserts a new bet
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (uuid, round_id, user_id, kind, amount, ledger_entry_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		bet.UUID,
		bet.RoundID,
		bet.UserID,
		bet.Kind,
		bet.Amount,
		bet.LedgerEntryID,
	).Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}
	return nil
}

// GetByUUID retrieves a bet by its public UUID
func (r *BetRepository) GetByUUID(ctx context.Context, betUUID uuid.UUID) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE uuid = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, betUUID))
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s: %w", betUUID, err)
	}
	return bet, nil
}

// GetByRound returns every bet in the round, the settlement input set
func (r *BetRepository) GetByRound(ctx context.Context, roundID int64) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE round_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

// Delete removes a bet; only the refund-before-lock path uses this
func (r *BetRepository) Delete(ctx context.Context, betID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM bets WHERE id = $1`, betID)
	if err != nil {
		return fmt.Errorf("failed to delete bet %d: %w", betID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", betID)
	}
	return nil
}

// GetByUser returns the user's most recent bets, newest first
func (r *BetRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for user %d: %w", userID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}
