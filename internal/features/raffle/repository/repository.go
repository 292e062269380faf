package repository

import (
	"context"
	"time"

	"rifas-el-negro-backend/internal/features/raffle/models"
)

type RaffleRepository interface {
	// CreateWithNumbers inserts the raffle and its full number space in one
	// transaction. A raffle without its 1000 numbers must never exist.
	CreateWithNumbers(ctx context.Context, raffle *models.Raffle, values []string) error
	GetByID(ctx context.Context, id int64) (*models.Raffle, error)
	ListActive(ctx context.Context) ([]*models.Raffle, error)
	ListAll(ctx context.Context) ([]*models.Raffle, error)
}

// NumberRepository is the ledger. Every mutation goes through Reserve,
// Release or Settle; nothing else writes number rows.
type NumberRepository interface {
	ListByRaffle(ctx context.Context, raffleID int64) ([]*models.Number, error)

	// Reserve marks the whole value set reserved for userID until the given
	// deadline, all or nothing. A value counts as takeable when it is
	// available, under an expired hold, or under a live hold by the same
	// user (which refreshes the deadline). On contention it returns the
	// conflicting values and no row is changed.
	Reserve(ctx context.Context, raffleID int64, values []string, userID int64, until time.Time) (conflicting []string, err error)

	// Release returns the user's reserved values to the pool. Rows held by
	// someone else are left alone.
	Release(ctx context.Context, raffleID int64, values []string, userID int64) error

	// VerifyReserved returns the values NOT under a live reservation by
	// userID; empty means the whole selection is still validly held.
	VerifyReserved(ctx context.Context, raffleID int64, values []string, userID int64) (stale []string, err error)
}
