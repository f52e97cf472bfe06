package testutil

import (
	"time"

	"github.com/google/uuid"

	"croupier/games"
	"croupier/models"
)

// CreateTestRound builds an unsaved betting-phase round for a room
func CreateTestRound(roomID int64, startedAt time.Time) *models.Round {
	return &models.Round{
		UUID:      uuid.New(),
		RoomID:    roomID,
		Day:       models.DayOf(startedAt, time.UTC),
		Phase:     models.PhaseBetting,
		StartedAt: startedAt,
	}
}

// CreateTestBet builds an unsaved bet against a round
func CreateTestBet(roundID, userID int64, kind games.BetKind, amount int64) *models.Bet {
	return &models.Bet{
		UUID:    uuid.New(),
		RoundID: roundID,
		UserID:  userID,
		Kind:    kind,
		Amount:  amount,
	}
}

// CreateTestLedgerEntry builds an unsaved ledger entry
func CreateTestLedgerEntry(userID int64, delta, before int64, entryType models.EntryType) *models.LedgerEntry {
	return &models.LedgerEntry{
		UserID:        userID,
		Type:          entryType,
		Partition:     models.PartitionWallet,
		Delta:         delta,
		BalanceBefore: before,
		BalanceAfter:  before + delta,
		Metadata:      map[string]any{"test": true},
	}
}
