package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"croupier/database"
	"croupier/models"
)

// LedgerRepository implements the service.LedgerRepository interface
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

const ledgerColumns = `id, user_id, entry_type, partition, delta,
	balance_before, balance_after, round_id, bet_id, metadata, memo, created_at`

func scanLedgerEntry(row pgx.Row) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	var metadataJSON []byte
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Type,
		&entry.Partition,
		&entry.Delta,
		&entry.BalanceBefore,
		&entry.BalanceAfter,
		&entry.RoundID,
		&entry.BetID,
		&metadataJSON,
		&entry.Memo,
		&entry.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ledger metadata: %w", err)
		}
	}
	return &entry, nil
}

// Record appends one entry; always called in the same transaction as the
// balance mutation it describes
func (r *LedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	var metadataJSON []byte
	if entry.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal ledger metadata: %w", err)
		}
	}

	query := `
		INSERT INTO ledger_entries (user_id, entry_type, partition, delta,
			balance_before, balance_after, round_id, bet_id, metadata, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Type,
		entry.Partition,
		entry.Delta,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.RoundID,
		entry.BetID,
		metadataJSON,
		entry.Memo,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for user %d: %w", entry.UserID, err)
	}
	return nil
}

// GetByUser returns the user's most recent ledger entries, newest first
func (r *LedgerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SumDeltas returns the reconciliation sum for one user partition. It must
// equal the user's current balance in that partition.
func (r *LedgerRepository) SumDeltas(ctx context.Context, userID int64, partition models.Partition) (int64, error) {
	query := `
		SELECT COALESCE(SUM(delta), 0)
		FROM ledger_entries
		WHERE user_id = $1 AND partition = $2`

	var sum int64
	if err := r.q.QueryRow(ctx, query, userID, partition).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum ledger deltas for user %d: %w", userID, err)
	}
	return sum, nil
}
