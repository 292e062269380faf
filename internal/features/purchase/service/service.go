package service

import (
	"context"
	"time"

	"github.com/lib/pq"

	"rifas-el-negro-backend/internal/common/cache"
	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/common/logger"
	"rifas-el-negro-backend/internal/common/metrics"
	"rifas-el-negro-backend/internal/features/purchase/models"
	"rifas-el-negro-backend/internal/features/purchase/repository"
	rafflemodels "rifas-el-negro-backend/internal/features/raffle/models"
	rafflerepo "rifas-el-negro-backend/internal/features/raffle/repository"
	raffleservice "rifas-el-negro-backend/internal/features/raffle/service"
)

type PurchaseService interface {
	// Create registers a pending payment claim over the user's reserved
	// numbers. The reservation is re-verified here; client state is never
	// trusted.
	Create(ctx context.Context, userID int64, input models.CreatePurchaseInput) (*models.Purchase, error)

	// Validate applies the admin decision: approve settles the numbers,
	// reject releases them, both atomically with the status flip.
	Validate(ctx context.Context, purchaseID, adminID int64, decision models.ValidateDecision) (*models.Purchase, error)

	ListByUser(ctx context.Context, userID int64) ([]*models.PurchaseWithRaffle, error)
	ListPending(ctx context.Context) ([]*models.PurchaseDetail, error)
	ListAll(ctx context.Context, status string) ([]*models.PurchaseDetail, error)
}

type purchaseService struct {
	purchases repository.PurchaseRepository
	raffles   rafflerepo.RaffleRepository
	numbers   rafflerepo.NumberRepository
	cache     *cache.Service
}

// NewPurchaseService builds the settlement engine. cache may be nil.
func NewPurchaseService(purchases repository.PurchaseRepository, raffles rafflerepo.RaffleRepository, numbers rafflerepo.NumberRepository, cacheSvc *cache.Service) PurchaseService {
	return &purchaseService{
		purchases: purchases,
		raffles:   raffles,
		numbers:   numbers,
		cache:     cacheSvc,
	}
}

func (s *purchaseService) Create(ctx context.Context, userID int64, input models.CreatePurchaseInput) (*models.Purchase, error) {
	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordPurchaseDuration(status, time.Since(start).Seconds())
	}()

	if len(input.Numbers) == 0 {
		return nil, apperrors.NewValidationError("Debe seleccionar al menos un número")
	}
	if invalid := rafflemodels.InvalidValues(input.Numbers); len(invalid) > 0 {
		return nil, apperrors.NewValidationError("Números inválidos, use tres dígitos entre 000 y 999").
			WithDetail("invalid_values", invalid)
	}
	if dups := rafflemodels.DuplicateValues(input.Numbers); len(dups) > 0 {
		return nil, apperrors.NewValidationError("La selección contiene números repetidos").
			WithDetail("duplicate_values", dups)
	}
	if !input.PaymentMethod.Valid() {
		return nil, apperrors.NewValidationError("Método de pago y referencia son requeridos").
			WithDetail("payment_method", input.PaymentMethod)
	}
	if input.PaymentReference == "" {
		return nil, apperrors.NewValidationError("Método de pago y referencia son requeridos")
	}

	raffle, err := s.raffles.GetByID(ctx, input.RaffleID)
	if err != nil {
		return nil, err
	}
	// A closed raffle is hidden from buyers, so it reads the same as a
	// missing one.
	if raffle.Status != rafflemodels.RaffleStatusActive {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "Rifa no encontrada o inactiva").
			WithDetail("status", raffle.Status)
	}

	// Re-check the hold at creation time: an expired or stolen reservation
	// must force the buyer back to selection.
	stale, err := s.numbers.VerifyReserved(ctx, input.RaffleID, input.Numbers, userID)
	if err != nil {
		return nil, err
	}
	if len(stale) > 0 {
		status = "conflict"
		return nil, apperrors.NewConflictError("Algunos números ya no están reservados para ti").
			WithDetail("stale_values", stale)
	}

	purchase := &models.Purchase{
		UserID:           userID,
		RaffleID:         input.RaffleID,
		Numbers:          pq.StringArray(input.Numbers),
		TotalAmount:      float64(len(input.Numbers)) * raffle.TicketPrice,
		PaymentMethod:    input.PaymentMethod,
		PaymentReference: input.PaymentReference,
		PaymentProof:     input.PaymentProof,
	}

	if err := s.purchases.Create(ctx, purchase); err != nil {
		return nil, err
	}
	status = "success"

	logger.Info().
		Int64("purchase_id", purchase.ID).
		Int64("user_id", userID).
		Int64("raffle_id", input.RaffleID).
		Int("numbers", len(input.Numbers)).
		Float64("total_amount", purchase.TotalAmount).
		Str("payment_method", string(input.PaymentMethod)).
		Msg("Purchase created")

	return purchase, nil
}

func (s *purchaseService) Validate(ctx context.Context, purchaseID, adminID int64, decision models.ValidateDecision) (*models.Purchase, error) {
	if decision != models.DecisionApprove && decision != models.DecisionReject {
		return nil, apperrors.NewValidationError("Acción inválida").
			WithDetail("decision", decision)
	}
	approve := decision == models.DecisionApprove

	purchase, err := s.purchases.Validate(ctx, purchaseID, adminID, approve)
	if err != nil {
		metrics.RecordValidation(string(decision), "failed")
		return nil, err
	}
	metrics.RecordValidation(string(decision), "success")

	s.invalidateAvailability(ctx, purchase.RaffleID)

	logger.Info().
		Int64("purchase_id", purchase.ID).
		Int64("admin_id", adminID).
		Str("decision", string(decision)).
		Str("status", string(purchase.Status)).
		Msg("Purchase validated")

	return purchase, nil
}

func (s *purchaseService) ListByUser(ctx context.Context, userID int64) ([]*models.PurchaseWithRaffle, error) {
	return s.purchases.ListByUser(ctx, userID)
}

func (s *purchaseService) ListPending(ctx context.Context) ([]*models.PurchaseDetail, error) {
	return s.purchases.List(ctx, string(models.PurchaseStatusPending))
}

func (s *purchaseService) ListAll(ctx context.Context, status string) ([]*models.PurchaseDetail, error) {
	switch status {
	case "", "all",
		string(models.PurchaseStatusPending),
		string(models.PurchaseStatusValidated),
		string(models.PurchaseStatusRejected):
	default:
		return nil, apperrors.NewValidationError("Estado de compra inválido").
			WithDetail("status", status)
	}
	return s.purchases.List(ctx, status)
}

func (s *purchaseService) invalidateAvailability(ctx context.Context, raffleID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, raffleservice.AvailabilityCacheKey(raffleID)); err != nil {
		logger.Warn().Err(err).Int64("raffle_id", raffleID).Msg("Availability cache invalidation failed")
	}
}
