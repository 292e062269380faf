package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rifas-el-negro-backend/internal/common/cache"
	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/common/logger"
	"rifas-el-negro-backend/internal/common/metrics"
	"rifas-el-negro-backend/internal/features/raffle/models"
	"rifas-el-negro-backend/internal/features/raffle/repository"
)

type RaffleService interface {
	Create(ctx context.Context, createdBy int64, input models.CreateRaffleInput) (*models.Raffle, error)
	GetByID(ctx context.Context, id int64) (*models.Raffle, error)
	ListActive(ctx context.Context) ([]*models.Raffle, error)
	ListAll(ctx context.Context) ([]*models.Raffle, error)

	// GetAvailability reports value -> status with expired holds already
	// folded back to available.
	GetAvailability(ctx context.Context, raffleID int64) (map[string]models.NumberStatus, error)

	// Reserve holds the selection for the user and returns the deadline.
	Reserve(ctx context.Context, raffleID, userID int64, values []string) (time.Time, error)

	// Release cancels the user's own holds on the selection.
	Release(ctx context.Context, raffleID, userID int64, values []string) error
}

type raffleService struct {
	raffles        repository.RaffleRepository
	numbers        repository.NumberRepository
	cache          *cache.Service
	reservationTTL time.Duration
	cacheTTL       time.Duration
}

// NewRaffleService builds the registry/ledger service. cache may be nil,
// availability is then always read from the database.
func NewRaffleService(raffles repository.RaffleRepository, numbers repository.NumberRepository, cacheSvc *cache.Service, reservationTTL, cacheTTL time.Duration) RaffleService {
	return &raffleService{
		raffles:        raffles,
		numbers:        numbers,
		cache:          cacheSvc,
		reservationTTL: reservationTTL,
		cacheTTL:       cacheTTL,
	}
}

// AvailabilityCacheKey is the redis key for a raffle's cached availability
// map. The settlement engine drops it after mutating the ledger.
func AvailabilityCacheKey(raffleID int64) string {
	return fmt.Sprintf("raffle:%d:availability", raffleID)
}

func (s *raffleService) Create(ctx context.Context, createdBy int64, input models.CreateRaffleInput) (*models.Raffle, error) {
	if input.Title == "" {
		return nil, apperrors.NewValidationError("Todos los campos son requeridos").WithDetail("field", "title")
	}
	if input.TicketPrice <= 0 {
		return nil, apperrors.NewValidationError("El precio del ticket debe ser mayor a cero")
	}
	if input.FirstPrize <= 0 || input.SecondPrize <= 0 || input.ThirdPrize <= 0 {
		return nil, apperrors.NewValidationError("Los premios deben ser mayores a cero")
	}
	if input.DrawDate.IsZero() {
		return nil, apperrors.NewValidationError("Todos los campos son requeridos").WithDetail("field", "draw_date")
	}

	raffle := &models.Raffle{
		Title:       input.Title,
		Description: input.Description,
		TicketPrice: input.TicketPrice,
		FirstPrize:  input.FirstPrize,
		SecondPrize: input.SecondPrize,
		ThirdPrize:  input.ThirdPrize,
		DrawDate:    input.DrawDate,
		Status:      models.RaffleStatusActive,
		CreatedBy:   createdBy,
	}

	if err := s.raffles.CreateWithNumbers(ctx, raffle, models.AllValues()); err != nil {
		return nil, err
	}

	logger.Info().
		Int64("raffle_id", raffle.ID).
		Str("title", raffle.Title).
		Float64("ticket_price", raffle.TicketPrice).
		Msg("Raffle created")

	return raffle, nil
}

func (s *raffleService) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	return s.raffles.GetByID(ctx, id)
}

func (s *raffleService) ListActive(ctx context.Context) ([]*models.Raffle, error) {
	return s.raffles.ListActive(ctx)
}

func (s *raffleService) ListAll(ctx context.Context) ([]*models.Raffle, error) {
	return s.raffles.ListAll(ctx)
}

func (s *raffleService) GetAvailability(ctx context.Context, raffleID int64) (map[string]models.NumberStatus, error) {
	key := AvailabilityCacheKey(raffleID)

	if s.cache != nil {
		cached := make(map[string]models.NumberStatus)
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if err != redis.Nil {
			logger.Warn().Err(err).Int64("raffle_id", raffleID).Msg("Availability cache read failed")
		}
	}

	if _, err := s.raffles.GetByID(ctx, raffleID); err != nil {
		return nil, err
	}

	rows, err := s.numbers.ListByRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	availability := make(map[string]models.NumberStatus, len(rows))
	for _, n := range rows {
		availability[n.Value] = n.EffectiveStatus(now)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, availability, s.cacheTTL); err != nil {
			logger.Warn().Err(err).Int64("raffle_id", raffleID).Msg("Availability cache write failed")
		}
	}

	return availability, nil
}

func (s *raffleService) Reserve(ctx context.Context, raffleID, userID int64, values []string) (time.Time, error) {
	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordReserveDuration(status, time.Since(start).Seconds())
	}()

	if err := s.validateSelection(values); err != nil {
		return time.Time{}, err
	}

	raffle, err := s.raffles.GetByID(ctx, raffleID)
	if err != nil {
		return time.Time{}, err
	}
	if raffle.Status != models.RaffleStatusActive {
		return time.Time{}, apperrors.NewStateError("La rifa no está activa").
			WithDetail("status", raffle.Status)
	}

	until := time.Now().Add(s.reservationTTL)
	conflicting, err := s.numbers.Reserve(ctx, raffleID, values, userID, until)
	if err != nil {
		return time.Time{}, err
	}
	if len(conflicting) > 0 {
		status = "conflict"
		return time.Time{}, apperrors.NewConflictError("Algunos números ya no están disponibles").
			WithDetail("conflicting_values", conflicting)
	}

	s.invalidateAvailability(ctx, raffleID)
	status = "success"

	logger.Info().
		Int64("raffle_id", raffleID).
		Int64("user_id", userID).
		Int("count", len(values)).
		Time("reserved_until", until).
		Msg("Numbers reserved")

	return until, nil
}

func (s *raffleService) Release(ctx context.Context, raffleID, userID int64, values []string) error {
	if err := s.validateSelection(values); err != nil {
		return err
	}

	if err := s.numbers.Release(ctx, raffleID, values, userID); err != nil {
		return err
	}

	s.invalidateAvailability(ctx, raffleID)

	logger.Info().
		Int64("raffle_id", raffleID).
		Int64("user_id", userID).
		Int("count", len(values)).
		Msg("Reservation released")

	return nil
}

func (s *raffleService) validateSelection(values []string) error {
	if len(values) == 0 {
		return apperrors.NewValidationError("Debe seleccionar al menos un número")
	}
	if invalid := models.InvalidValues(values); len(invalid) > 0 {
		return apperrors.NewValidationError("Números inválidos, use tres dígitos entre 000 y 999").
			WithDetail("invalid_values", invalid)
	}
	if dups := models.DuplicateValues(values); len(dups) > 0 {
		return apperrors.NewValidationError("La selección contiene números repetidos").
			WithDetail("duplicate_values", dups)
	}
	return nil
}

func (s *raffleService) invalidateAvailability(ctx context.Context, raffleID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, AvailabilityCacheKey(raffleID)); err != nil {
		logger.Warn().Err(err).Int64("raffle_id", raffleID).Msg("Availability cache invalidation failed")
	}
}
