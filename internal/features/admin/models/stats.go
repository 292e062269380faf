package models

import "time"

// Stats is the dashboard aggregate. Point-in-time reads, no caching
// guarantees beyond the short redis TTL.
type Stats struct {
	TotalUsers         int64              `json:"total_users"`
	PendingPurchases   int64              `json:"pending_purchases"`
	ValidatedPurchases int64              `json:"validated_purchases"`
	RejectedPurchases  int64              `json:"rejected_purchases"`
	TotalRevenue       float64            `json:"total_revenue"`
	PendingRevenue     float64            `json:"pending_revenue"`
	Raffles            []RaffleNumberStat `json:"raffles"`
}

// RaffleNumberStat counts one raffle's sold and effectively-available
// numbers (expired holds count as available).
type RaffleNumberStat struct {
	RaffleID  int64  `db:"raffle_id" json:"raffle_id"`
	Title     string `db:"title" json:"title"`
	Sold      int64  `db:"sold" json:"sold"`
	Available int64  `db:"available" json:"available"`
}

// PaymentMethodStat is one row of the validated-revenue breakdown.
type PaymentMethodStat struct {
	Method      string  `db:"payment_method" json:"method"`
	Count       int64   `db:"count" json:"count"`
	TotalAmount float64 `db:"total_amount" json:"total_amount"`
}

// RecentSale feeds the reports page and its CSV export.
type RecentSale struct {
	PurchaseID       int64     `db:"purchase_id" json:"purchase_id"`
	Numbers          string    `db:"numbers" json:"numbers"`
	TotalAmount      float64   `db:"total_amount" json:"total_amount"`
	PaymentMethod    string    `db:"payment_method" json:"payment_method"`
	PaymentReference string    `db:"payment_reference" json:"payment_reference"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	Email            string    `db:"email" json:"email"`
	Phone            string    `db:"phone" json:"phone"`
	Cedula           string    `db:"cedula" json:"cedula"`
	RaffleTitle      string    `db:"raffle_title" json:"raffle_title"`
}
