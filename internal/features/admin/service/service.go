package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"rifas-el-negro-backend/internal/common/cache"
	"rifas-el-negro-backend/internal/common/logger"
	"rifas-el-negro-backend/internal/features/admin/models"
	"rifas-el-negro-backend/internal/features/admin/repository"
)

const statsCacheKey = "admin:stats"

type AdminService interface {
	GetStats(ctx context.Context) (*models.Stats, error)
	GetPaymentStats(ctx context.Context) ([]*models.PaymentMethodStat, error)
	GetRecentSales(ctx context.Context, limit int) ([]*models.RecentSale, error)
}

type adminService struct {
	repo     repository.StatsRepository
	cache    *cache.Service
	cacheTTL time.Duration
}

// NewAdminService builds the read-only dashboard facade. cache may be nil.
func NewAdminService(repo repository.StatsRepository, cacheSvc *cache.Service, cacheTTL time.Duration) AdminService {
	return &adminService{
		repo:     repo,
		cache:    cacheSvc,
		cacheTTL: cacheTTL,
	}
}

func (s *adminService) GetStats(ctx context.Context) (*models.Stats, error) {
	if s.cache != nil {
		var cached models.Stats
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		} else if err != redis.Nil {
			logger.Warn().Err(err).Msg("Stats cache read failed")
		}
	}

	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Stats cache write failed")
		}
	}

	return stats, nil
}

func (s *adminService) GetPaymentStats(ctx context.Context) ([]*models.PaymentMethodStat, error) {
	return s.repo.GetPaymentStats(ctx)
}

func (s *adminService) GetRecentSales(ctx context.Context, limit int) ([]*models.RecentSale, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.GetRecentSales(ctx, limit)
}
