package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/features/admin/models"
	"rifas-el-negro-backend/internal/features/admin/repository"
)

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) GetStats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	if err := r.db.GetContext(ctx, &stats.TotalUsers, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, apperrors.NewDatabaseError("count users", err)
	}

	var byStatus []struct {
		Status  string  `db:"status"`
		Count   int64   `db:"count"`
		Revenue float64 `db:"revenue"`
	}
	err := r.db.SelectContext(ctx, &byStatus, `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue
		FROM purchases
		GROUP BY status
	`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("aggregate purchases", err)
	}
	for _, row := range byStatus {
		switch row.Status {
		case "pending":
			stats.PendingPurchases = row.Count
			stats.PendingRevenue = row.Revenue
		case "validated":
			stats.ValidatedPurchases = row.Count
			stats.TotalRevenue = row.Revenue
		case "rejected":
			stats.RejectedPurchases = row.Count
		}
	}

	// Expired holds count as available; only 'sold' rows are off the market
	// for good.
	err = r.db.SelectContext(ctx, &stats.Raffles, `
		SELECT r.id AS raffle_id, r.title,
		       COUNT(*) FILTER (WHERE n.status = 'sold') AS sold,
		       COUNT(*) FILTER (WHERE n.status = 'available'
		                        OR (n.status = 'reserved' AND n.reserved_until <= now())) AS available
		FROM raffles r
		JOIN numbers n ON n.raffle_id = r.id
		GROUP BY r.id, r.title
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("aggregate numbers", err)
	}

	return stats, nil
}

func (r *statsRepository) GetPaymentStats(ctx context.Context) ([]*models.PaymentMethodStat, error) {
	var stats []*models.PaymentMethodStat
	err := r.db.SelectContext(ctx, &stats, `
		SELECT payment_method, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total_amount
		FROM purchases
		WHERE status = 'validated'
		GROUP BY payment_method
		ORDER BY count DESC
	`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("aggregate payment methods", err)
	}
	return stats, nil
}

func (r *statsRepository) GetRecentSales(ctx context.Context, limit int) ([]*models.RecentSale, error) {
	var sales []*models.RecentSale
	err := r.db.SelectContext(ctx, &sales, `
		SELECT p.id AS purchase_id, array_to_string(p.numbers, ',') AS numbers,
		       p.total_amount, p.payment_method, p.payment_reference, p.status, p.created_at,
		       u.first_name, u.last_name, u.email, u.phone, u.cedula,
		       r.title AS raffle_title
		FROM purchases p
		JOIN users u ON p.user_id = u.id
		JOIN raffles r ON p.raffle_id = r.id
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list recent sales", err)
	}
	return sales, nil
}
