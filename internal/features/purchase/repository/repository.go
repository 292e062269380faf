package repository

import (
	"context"

	"rifas-el-negro-backend/internal/features/purchase/models"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	GetByID(ctx context.Context, id int64) (*models.Purchase, error)

	// Validate applies the admin decision and the matching ledger mutation
	// (settle on approve, release on reject) as one transaction. It fails
	// with a not-found error for unknown ids and a state error when the
	// purchase is no longer pending; in every failure case neither the
	// purchase nor the numbers change.
	Validate(ctx context.Context, purchaseID, adminID int64, approve bool) (*models.Purchase, error)

	ListByUser(ctx context.Context, userID int64) ([]*models.PurchaseWithRaffle, error)

	// List returns purchases for the admin view, optionally filtered by
	// status ("" or "all" means everything), newest first.
	List(ctx context.Context, status string) ([]*models.PurchaseDetail, error)
}
