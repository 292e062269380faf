package models

import "time"

// RaffleStatus represents the lifecycle of a sales cycle.
type RaffleStatus string

const (
	RaffleStatusActive RaffleStatus = "active" // numbers on sale
	RaffleStatusClosed RaffleStatus = "closed" // sales stopped, draw pending
	RaffleStatusDrawn  RaffleStatus = "drawn"  // winners picked
)

// Raffle is a single sales cycle with its own 000-999 number space.
type Raffle struct {
	ID          int64        `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	TicketPrice float64      `db:"ticket_price" json:"ticket_price"`
	FirstPrize  float64      `db:"first_prize" json:"first_prize"`
	SecondPrize float64      `db:"second_prize" json:"second_prize"`
	ThirdPrize  float64      `db:"third_prize" json:"third_prize"`
	DrawDate    time.Time    `db:"draw_date" json:"draw_date"`
	Status      RaffleStatus `db:"status" json:"status"`
	CreatedBy   int64        `db:"created_by" json:"created_by"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CreateRaffleInput is what the admin form submits.
type CreateRaffleInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TicketPrice float64   `json:"ticket_price"`
	FirstPrize  float64   `json:"first_prize"`
	SecondPrize float64   `json:"second_prize"`
	ThirdPrize  float64   `json:"third_prize"`
	DrawDate    time.Time `json:"draw_date"`
}
