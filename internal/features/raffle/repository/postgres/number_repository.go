package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/features/raffle/models"
	"rifas-el-negro-backend/internal/features/raffle/repository"
)

// Ledger mutation statements. The purchase settlement transaction reuses
// these so every write to number rows funnels through the same SQL. Each one
// locks its rows through an ORDER BY value subquery: overlapping mutations
// always acquire locks in the same order, so they block instead of
// deadlocking.
const (
	// takeable: available, expired hold, or a live hold by the same user.
	ReserveNumbersQuery = `
		UPDATE numbers
		SET status = 'reserved', user_id = $3, reserved_until = $4, updated_at = now()
		WHERE id IN (
			SELECT id FROM numbers
			WHERE raffle_id = $1 AND value = ANY($2)
			  AND (status = 'available'
			       OR (status = 'reserved' AND (reserved_until <= now() OR user_id = $3)))
			ORDER BY value
			FOR UPDATE
		)
	`

	// SettleNumbersQuery only touches rows reserved by the buyer; a sold
	// number keeps its holder, only the hold deadline is cleared.
	SettleNumbersQuery = `
		UPDATE numbers
		SET status = 'sold', reserved_until = NULL, updated_at = now()
		WHERE id IN (
			SELECT id FROM numbers
			WHERE raffle_id = $1 AND value = ANY($2)
			  AND status = 'reserved' AND user_id = $3
			ORDER BY value
			FOR UPDATE
		)
	`

	// ReleaseNumbersQuery never releases a hold that has meanwhile been
	// claimed by a different user.
	ReleaseNumbersQuery = `
		UPDATE numbers
		SET status = 'available', user_id = NULL, reserved_until = NULL, updated_at = now()
		WHERE id IN (
			SELECT id FROM numbers
			WHERE raffle_id = $1 AND value = ANY($2)
			  AND status = 'reserved' AND user_id = $3
			ORDER BY value
			FOR UPDATE
		)
	`
)

type numberRepository struct {
	db *sqlx.DB
}

func NewNumberRepository(db *sqlx.DB) repository.NumberRepository {
	return &numberRepository{db: db}
}

func (r *numberRepository) ListByRaffle(ctx context.Context, raffleID int64) ([]*models.Number, error) {
	var numbers []*models.Number
	err := r.db.SelectContext(ctx, &numbers,
		`SELECT * FROM numbers WHERE raffle_id = $1 ORDER BY value`, raffleID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list numbers", err)
	}
	return numbers, nil
}

func (r *numberRepository) Reserve(ctx context.Context, raffleID int64, values []string, userID int64, until time.Time) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError("begin reserve transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, ReserveNumbersQuery, raffleID, pq.Array(values), userID, until)
	if err != nil {
		return nil, apperrors.NewDatabaseError("reserve numbers", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperrors.NewDatabaseError("reserve numbers", err)
	}

	// All or nothing: if any requested value was not takeable the whole
	// reservation is rolled back and the losers are reported.
	if affected != int64(len(values)) {
		if err := tx.Rollback(); err != nil {
			return nil, apperrors.NewDatabaseError("rollback reserve transaction", err)
		}
		return r.conflictingValues(ctx, raffleID, values, userID)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewDatabaseError("commit reserve transaction", err)
	}
	return nil, nil
}

// conflictingValues reports which of the requested values are not takeable
// by userID right now. Read committed is enough: the caller retries anyway.
func (r *numberRepository) conflictingValues(ctx context.Context, raffleID int64, values []string, userID int64) ([]string, error) {
	query := `
		SELECT value FROM numbers
		WHERE raffle_id = $1 AND value = ANY($2)
		  AND NOT (status = 'available'
		           OR (status = 'reserved' AND (reserved_until <= now() OR user_id = $3)))
	`
	var conflicting []string
	if err := r.db.SelectContext(ctx, &conflicting, query, raffleID, pq.Array(values), userID); err != nil {
		return nil, apperrors.NewDatabaseError("query conflicting numbers", err)
	}
	if len(conflicting) == 0 {
		// Nothing conflicts anymore (the competing hold expired between the
		// two statements) but values may simply not exist for this raffle.
		return values, nil
	}
	return conflicting, nil
}

func (r *numberRepository) Release(ctx context.Context, raffleID int64, values []string, userID int64) error {
	if _, err := r.db.ExecContext(ctx, ReleaseNumbersQuery, raffleID, pq.Array(values), userID); err != nil {
		return apperrors.NewDatabaseError("release numbers", err)
	}
	return nil
}

// SettleInTx runs the settle statement inside the caller's transaction and
// verifies the affected row count; the purchase validation transaction uses
// it so the ledger and the purchase flip commit together.
func SettleInTx(ctx context.Context, tx *sqlx.Tx, raffleID int64, values []string, userID int64) error {
	res, err := tx.ExecContext(ctx, SettleNumbersQuery, raffleID, pq.Array(values), userID)
	if err != nil {
		return apperrors.NewDatabaseError("settle numbers", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewDatabaseError("settle numbers", err)
	}
	if affected != int64(len(values)) {
		return apperrors.NewStateError("algunos números ya no están reservados por el comprador").
			WithDetail("expected", len(values)).
			WithDetail("settled", affected)
	}
	return nil
}

// ReleaseInTx is the transactional counterpart of Release.
func ReleaseInTx(ctx context.Context, tx *sqlx.Tx, raffleID int64, values []string, userID int64) error {
	if _, err := tx.ExecContext(ctx, ReleaseNumbersQuery, raffleID, pq.Array(values), userID); err != nil {
		return apperrors.NewDatabaseError("release numbers", err)
	}
	return nil
}

func (r *numberRepository) VerifyReserved(ctx context.Context, raffleID int64, values []string, userID int64) ([]string, error) {
	query := `
		SELECT value FROM numbers
		WHERE raffle_id = $1 AND value = ANY($2)
		  AND status = 'reserved' AND user_id = $3 AND reserved_until > now()
	`
	var held []string
	if err := r.db.SelectContext(ctx, &held, query, raffleID, pq.Array(values), userID); err != nil {
		return nil, apperrors.NewDatabaseError("verify reserved numbers", err)
	}

	heldSet := make(map[string]struct{}, len(held))
	for _, v := range held {
		heldSet[v] = struct{}{}
	}
	var stale []string
	for _, v := range values {
		if _, ok := heldSet[v]; !ok {
			stale = append(stale, v)
		}
	}
	return stale, nil
}
