package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"croupier/database"
	"croupier/models"
)

// RoomRepository implements the service.RoomRepository interface
type RoomRepository struct {
	q queryable
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *database.DB) *RoomRepository {
	return &RoomRepository{q: db.Pool}
}

// newRoomRepositoryWithTx creates a new room repository with a transaction
func newRoomRepositoryWithTx(tx queryable) *RoomRepository {
	return &RoomRepository{q: tx}
}

const roomColumns = `id, code, name, game, min_bet, max_bet, betting_seconds,
	lock_buffer_seconds, reveal_seconds, commission_free, seed_override,
	enabled, created_at, updated_at`

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	err := row.Scan(
		&room.ID,
		&room.Code,
		&room.Name,
		&room.Game,
		&room.MinBet,
		&room.MaxBet,
		&room.BettingSeconds,
		&room.LockBufferSeconds,
		&room.RevealSeconds,
		&room.CommissionFree,
		&room.SeedOverride,
		&room.Enabled,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(ctx context.Context, roomID int64) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.q.QueryRow(ctx, query, roomID))
	if err != nil {
		return nil, fmt.Errorf("failed to get room %d: %w", roomID, err)
	}
	return room, nil
}

// GetByCode retrieves a room by its public code
func (r *RoomRepository) GetByCode(ctx context.Context, code string) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE code = $1`

	room, err := scanRoom(r.q.QueryRow(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("failed to get room %q: %w", code, err)
	}
	return room, nil
}

func (r *RoomRepository) queryRooms(ctx context.Context, query string, args ...any) ([]*models.Room, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// GetEnabled returns all rooms the scheduler should drive
func (r *RoomRepository) GetEnabled(ctx context.Context) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE enabled ORDER BY code`

	rooms, err := r.queryRooms(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled rooms: %w", err)
	}
	return rooms, nil
}

// GetAll returns every configured room
func (r *RoomRepository) GetAll(ctx context.Context) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY code`

	rooms, err := r.queryRooms(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}
	return rooms, nil
}

// Update persists admin configuration changes
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	query := `
		UPDATE rooms
		SET name = $2, min_bet = $3, max_bet = $4, betting_seconds = $5,
		    lock_buffer_seconds = $6, reveal_seconds = $7,
		    commission_free = $8, seed_override = $9, enabled = $10,
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := r.q.Exec(ctx, query,
		room.ID,
		room.Name,
		room.MinBet,
		room.MaxBet,
		room.BettingSeconds,
		room.LockBufferSeconds,
		room.RevealSeconds,
		room.CommissionFree,
		room.SeedOverride,
		room.Enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to update room %d: %w", room.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("room %d not found", room.ID)
	}
	return nil
}
