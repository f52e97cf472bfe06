package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"croupier/database"
	"croupier/models"
	"croupier/service"
)

// partitionColumn maps a balance partition to its users column. Partitions
// are a closed enum, so this never interpolates caller input into SQL.
func partitionColumn(p models.Partition) (string, error) {
	switch p {
	case models.PartitionWallet:
		return "wallet", nil
	case models.PartitionBank:
		return "bank", nil
	}
	return "", fmt.Errorf("unknown balance partition %q", p)
}

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, username, wallet, bank, banned, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Wallet,
		&user.Bank,
		&user.Banned,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return user, nil
}

// Create creates a new user with the initial wallet balance
func (r *UserRepository) Create(ctx context.Context, username string, initialWallet int64) (*models.User, error) {
	query := `
		INSERT INTO users (username, wallet)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, username, initialWallet))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return user, nil
}

// Credit adds to a balance partition atomically and returns the resulting
// balance
func (r *UserRepository) Credit(ctx context.Context, userID int64, partition models.Partition, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive")
	}
	col, err := partitionColumn(partition)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = %s + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s`, col, col, col)

	var newBalance int64
	err = r.q.QueryRow(ctx, query, amount, userID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("%w: user %d", service.ErrNotFound, userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit user %d: %w", userID, err)
	}
	return newBalance, nil
}

// Debit subtracts from a balance partition atomically, failing with
// ErrInsufficientFunds when the partition would go negative. The balance
// check and the mutation are one conditional UPDATE, so concurrent debits
// against the same row cannot overdraw it.
func (r *UserRepository) Debit(ctx context.Context, userID int64, partition models.Partition, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive")
	}
	col, err := partitionColumn(partition)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = %s - $1, updated_at = NOW()
		WHERE id = $2 AND %s >= $1
		RETURNING %s`, col, col, col, col)

	var newBalance int64
	err = r.q.QueryRow(ctx, query, amount, userID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		// Distinguish a missing user from an overdraw attempt
		user, getErr := r.GetByID(ctx, userID)
		if getErr != nil {
			return 0, fmt.Errorf("failed to check user after debit miss: %w", getErr)
		}
		if user == nil {
			return 0, fmt.Errorf("%w: user %d", service.ErrNotFound, userID)
		}
		return 0, fmt.Errorf("%w: have %d, need %d", service.ErrInsufficientFunds, user.BalanceOf(partition), amount)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit user %d: %w", userID, err)
	}
	return newBalance, nil
}
