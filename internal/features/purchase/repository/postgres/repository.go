package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/features/purchase/models"
	"rifas-el-negro-backend/internal/features/purchase/repository"
	ledger "rifas-el-negro-backend/internal/features/raffle/repository/postgres"
)

type purchaseRepository struct {
	db *sqlx.DB
}

func NewPurchaseRepository(db *sqlx.DB) repository.PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	now := time.Now()
	purchase.CreatedAt = now
	purchase.UpdatedAt = now
	purchase.Status = models.PurchaseStatusPending

	query := `
		INSERT INTO purchases (user_id, raffle_id, numbers, total_amount, payment_method, payment_reference, payment_proof, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.db.GetContext(ctx, &purchase.ID, query,
		purchase.UserID, purchase.RaffleID, purchase.Numbers, purchase.TotalAmount,
		purchase.PaymentMethod, purchase.PaymentReference, purchase.PaymentProof,
		purchase.Status, purchase.CreatedAt, purchase.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseError("insert purchase", err)
	}
	return nil
}

func (r *purchaseRepository) GetByID(ctx context.Context, id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.GetContext(ctx, &purchase, `SELECT * FROM purchases WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("purchase", id)
		}
		return nil, apperrors.NewDatabaseError("get purchase", err)
	}
	return &purchase, nil
}

func (r *purchaseRepository) Validate(ctx context.Context, purchaseID, adminID int64, approve bool) (*models.Purchase, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError("begin validate transaction", err)
	}
	defer tx.Rollback()

	// Lock the purchase row so two concurrent validations serialize; the
	// loser then fails the pending check below.
	var purchase models.Purchase
	err = tx.GetContext(ctx, &purchase, `SELECT * FROM purchases WHERE id = $1 FOR UPDATE`, purchaseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("purchase", purchaseID)
		}
		return nil, apperrors.NewDatabaseError("get purchase for validation", err)
	}

	if purchase.Status != models.PurchaseStatusPending {
		return nil, apperrors.NewStateError("La compra ya fue procesada").
			WithDetail("status", purchase.Status)
	}

	// Ledger first: if the numbers cannot be settled the transaction rolls
	// back and the purchase stays pending.
	if approve {
		if err := ledger.SettleInTx(ctx, tx, purchase.RaffleID, purchase.Numbers, purchase.UserID); err != nil {
			return nil, err
		}
	} else {
		if err := ledger.ReleaseInTx(ctx, tx, purchase.RaffleID, purchase.Numbers, purchase.UserID); err != nil {
			return nil, err
		}
	}

	newStatus := models.PurchaseStatusRejected
	if approve {
		newStatus = models.PurchaseStatusValidated
	}
	now := time.Now()

	res, err := tx.ExecContext(ctx, `
		UPDATE purchases
		SET status = $1, validated_by = $2, validated_at = $3, updated_at = $3
		WHERE id = $4 AND status = 'pending'
	`, newStatus, adminID, now, purchaseID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("update purchase status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperrors.NewDatabaseError("update purchase status", err)
	}
	if affected != 1 {
		return nil, apperrors.NewStateError("La compra ya fue procesada")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewDatabaseError("commit validate transaction", err)
	}

	purchase.Status = newStatus
	purchase.ValidatedBy = &adminID
	purchase.ValidatedAt = &now
	purchase.UpdatedAt = now
	return &purchase, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID int64) ([]*models.PurchaseWithRaffle, error) {
	query := `
		SELECT p.*, r.title AS raffle_title, r.draw_date
		FROM purchases p
		JOIN raffles r ON p.raffle_id = r.id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`
	var purchases []*models.PurchaseWithRaffle
	if err := r.db.SelectContext(ctx, &purchases, query, userID); err != nil {
		return nil, apperrors.NewDatabaseError("list purchases by user", err)
	}
	return purchases, nil
}

func (r *purchaseRepository) List(ctx context.Context, status string) ([]*models.PurchaseDetail, error) {
	query := `
		SELECT p.*, u.first_name, u.last_name, u.email, u.phone, u.cedula, r.title AS raffle_title
		FROM purchases p
		JOIN users u ON p.user_id = u.id
		JOIN raffles r ON p.raffle_id = r.id
	`
	args := []interface{}{}
	if status != "" && status != "all" {
		query += ` WHERE p.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY p.created_at DESC`

	var purchases []*models.PurchaseDetail
	if err := r.db.SelectContext(ctx, &purchases, query, args...); err != nil {
		return nil, apperrors.NewDatabaseError("list purchases", err)
	}
	return purchases, nil
}
