package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/features/raffle/models"
	"rifas-el-negro-backend/internal/features/raffle/repository"
)

type raffleRepository struct {
	db *sqlx.DB
}

func NewRaffleRepository(db *sqlx.DB) repository.RaffleRepository {
	return &raffleRepository{db: db}
}

func (r *raffleRepository) CreateWithNumbers(ctx context.Context, raffle *models.Raffle, values []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewDatabaseError("begin raffle transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()
	raffle.CreatedAt = now
	raffle.UpdatedAt = now
	if raffle.Status == "" {
		raffle.Status = models.RaffleStatusActive
	}

	query := `
		INSERT INTO raffles (title, description, ticket_price, first_prize, second_prize, third_prize, draw_date, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	if err := tx.GetContext(ctx, &raffle.ID, query,
		raffle.Title, raffle.Description, raffle.TicketPrice,
		raffle.FirstPrize, raffle.SecondPrize, raffle.ThirdPrize,
		raffle.DrawDate, raffle.Status, raffle.CreatedBy,
		raffle.CreatedAt, raffle.UpdatedAt,
	); err != nil {
		return apperrors.NewDatabaseError("insert raffle", err)
	}

	if err := insertNumbers(ctx, tx, raffle.ID, values, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewDatabaseError("commit raffle transaction", err)
	}
	return nil
}

// insertNumbers bulk-inserts the number space with unnest; one statement
// covers the full 000-999 range.
func insertNumbers(ctx context.Context, tx *sqlx.Tx, raffleID int64, values []string, createdAt time.Time) error {
	query := `
		INSERT INTO numbers (raffle_id, value, status, created_at, updated_at)
		SELECT $1, v, 'available', $3, $3 FROM unnest($2::text[]) AS v
	`
	if _, err := tx.ExecContext(ctx, query, raffleID, pq.Array(values), createdAt); err != nil {
		return apperrors.NewDatabaseError("insert numbers", err)
	}
	return nil
}

func (r *raffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	var raffle models.Raffle
	err := r.db.GetContext(ctx, &raffle, `SELECT * FROM raffles WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("raffle", id)
		}
		return nil, apperrors.NewDatabaseError("get raffle", err)
	}
	return &raffle, nil
}

func (r *raffleRepository) ListActive(ctx context.Context) ([]*models.Raffle, error) {
	var raffles []*models.Raffle
	err := r.db.SelectContext(ctx, &raffles,
		`SELECT * FROM raffles WHERE status = 'active' ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list active raffles", err)
	}
	return raffles, nil
}

func (r *raffleRepository) ListAll(ctx context.Context) ([]*models.Raffle, error) {
	var raffles []*models.Raffle
	err := r.db.SelectContext(ctx, &raffles, `SELECT * FROM raffles ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list raffles", err)
	}
	return raffles, nil
}
