package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/features/admin/models"
)

type fakeStatsRepo struct {
	stats     *models.Stats
	statsErr  error
	payments  []*models.PaymentMethodStat
	sales     []*models.RecentSale
	lastLimit int
}

func (r *fakeStatsRepo) GetStats(_ context.Context) (*models.Stats, error) {
	if r.statsErr != nil {
		return nil, r.statsErr
	}
	return r.stats, nil
}

func (r *fakeStatsRepo) GetPaymentStats(_ context.Context) ([]*models.PaymentMethodStat, error) {
	return r.payments, nil
}

func (r *fakeStatsRepo) GetRecentSales(_ context.Context, limit int) ([]*models.RecentSale, error) {
	r.lastLimit = limit
	if limit > len(r.sales) {
		limit = len(r.sales)
	}
	return r.sales[:limit], nil
}

func TestGetStatsAfterFirstSale(t *testing.T) {
	// The dashboard right after one 400-unit purchase was approved: one
	// number sold, the rest of the space still open.
	repo := &fakeStatsRepo{stats: &models.Stats{
		TotalUsers:         2,
		PendingPurchases:   0,
		ValidatedPurchases: 1,
		TotalRevenue:       400,
		PendingRevenue:     0,
		Raffles: []models.RaffleNumberStat{
			{RaffleID: 1, Title: "Rifa", Sold: 1, Available: 999},
		},
	}}
	svc := NewAdminService(repo, nil, 0)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.ValidatedPurchases)
	assert.Equal(t, 400.0, stats.TotalRevenue)
	assert.Zero(t, stats.PendingRevenue)
	require.Len(t, stats.Raffles, 1)
	assert.Equal(t, int64(1), stats.Raffles[0].Sold)
	assert.Equal(t, int64(999), stats.Raffles[0].Available)
}

func TestGetStatsPropagatesError(t *testing.T) {
	repo := &fakeStatsRepo{statsErr: apperrors.NewDatabaseError("stats", assert.AnError)}
	svc := NewAdminService(repo, nil, 0)

	_, err := svc.GetStats(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabase))
}

func TestGetPaymentStats(t *testing.T) {
	repo := &fakeStatsRepo{payments: []*models.PaymentMethodStat{
		{Method: "pago_movil", Count: 3, TotalAmount: 60},
		{Method: "zelle", Count: 1, TotalAmount: 25},
	}}
	svc := NewAdminService(repo, nil, 0)

	stats, err := svc.GetPaymentStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "pago_movil", stats[0].Method)
	assert.Equal(t, 60.0, stats[0].TotalAmount)
}

func TestGetRecentSalesLimitClamp(t *testing.T) {
	sales := make([]*models.RecentSale, 600)
	for i := range sales {
		sales[i] = &models.RecentSale{PurchaseID: int64(i + 1)}
	}
	repo := &fakeStatsRepo{sales: sales}
	svc := NewAdminService(repo, nil, 0)
	ctx := context.Background()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero falls back to default", 0, 50},
		{"negative falls back to default", -5, 50},
		{"above cap falls back to default", 501, 50},
		{"in range passes through", 25, 25},
		{"cap itself passes through", 500, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.GetRecentSales(ctx, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, repo.lastLimit)
			assert.Len(t, out, tt.want)
		})
	}
}
