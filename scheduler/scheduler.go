package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"

	"croupier/service"
)

// Scheduler drives the round lifecycle for every enabled room. On each tick
// it asks the round service to advance each room independently, so one
// room's failure never stalls the others. All transitions are guarded by
// per-room advisory locks and conditional updates, so overlapping ticks and
// concurrent scheduler instances are harmless.
type Scheduler struct {
	roundService service.RoundService
	roomRepo     service.RoomRepository
	interval     time.Duration

	mu    sync.Mutex
	sched gocron.Scheduler
}

// New creates a scheduler ticking at the given interval.
func New(roundService service.RoundService, roomRepo service.RoomRepository, interval time.Duration) *Scheduler {
	return &Scheduler{
		roundService: roundService,
		roomRepo:     roomRepo,
		interval:     interval,
	}
}

// Start begins ticking. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != nil {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.tick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule room tick: %w", err)
	}

	sched.Start()
	s.sched = sched
	log.WithField("interval", s.interval).Info("Round scheduler started")
	return nil
}

// Stop shuts the scheduler down, waiting for an in-flight tick to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	if err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	log.Info("Round scheduler stopped")
	return nil
}

// tick advances every enabled room once.
func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval*10)
	defer cancel()

	rooms, err := s.roomRepo.GetEnabled(ctx)
	if err != nil {
		log.WithError(err).Error("Scheduler failed to list enabled rooms")
		return
	}

	for _, room := range rooms {
		if err := s.roundService.CheckAdvance(ctx, room.ID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"roomID":   room.ID,
				"roomCode": room.Code,
			}).Error("Failed to advance room")
		}
	}
}
