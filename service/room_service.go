package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"croupier/models"
)

type roomService struct {
	uowFactory UnitOfWorkFactory
}

// NewRoomService creates a new room configuration service
func NewRoomService(uowFactory UnitOfWorkFactory) RoomService {
	return &roomService{uowFactory: uowFactory}
}

func (s *roomService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rooms, err := uow.RoomRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// SetRoomConfig applies the non-nil fields of update. Changes are picked up
// by the state machine on its next transition; the running round keeps the
// durations it started with only insofar as its timestamps are already set.
func (s *roomService) SetRoomConfig(ctx context.Context, code string, update RoomConfigUpdate) (*models.Room, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %q", ErrNotFound, code)
	}

	if update.Name != nil {
		room.Name = *update.Name
	}
	if update.MinBet != nil {
		room.MinBet = *update.MinBet
	}
	if update.MaxBet != nil {
		room.MaxBet = *update.MaxBet
	}
	if update.BettingSeconds != nil {
		room.BettingSeconds = *update.BettingSeconds
	}
	if update.LockBufferSeconds != nil {
		room.LockBufferSeconds = *update.LockBufferSeconds
	}
	if update.RevealSeconds != nil {
		room.RevealSeconds = *update.RevealSeconds
	}
	if update.CommissionFree != nil {
		room.CommissionFree = *update.CommissionFree
	}
	if update.Enabled != nil {
		room.Enabled = *update.Enabled
	}

	if room.MinBet <= 0 || room.MaxBet < room.MinBet {
		return nil, fmt.Errorf("invalid table limits [%d, %d]", room.MinBet, room.MaxBet)
	}
	if room.BettingSeconds <= 0 || room.RevealSeconds <= 0 ||
		room.LockBufferSeconds < 0 || room.LockBufferSeconds >= room.BettingSeconds {
		return nil, fmt.Errorf("invalid phase durations betting=%ds lock_buffer=%ds reveal=%ds",
			room.BettingSeconds, room.LockBufferSeconds, room.RevealSeconds)
	}

	if err := uow.RoomRepository().Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{"room": room.Code, "enabled": room.Enabled}).Info("Room config updated")
	return room, nil
}

func (s *roomService) SetSeedOverride(ctx context.Context, code string, seed *int64) (*models.Room, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %q", ErrNotFound, code)
	}

	room.SeedOverride = seed
	if err := uow.RoomRepository().Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{"room": room.Code, "forced": seed != nil}).Warn("Room draw seed override changed")
	return room, nil
}
