package repository

import (
	"context"

	"rifas-el-negro-backend/internal/features/admin/models"
)

// StatsRepository is the read-only aggregation over users, purchases and
// the number ledger. It never mutates anything.
type StatsRepository interface {
	GetStats(ctx context.Context) (*models.Stats, error)
	GetPaymentStats(ctx context.Context) ([]*models.PaymentMethodStat, error)
	GetRecentSales(ctx context.Context, limit int) ([]*models.RecentSale, error)
}
