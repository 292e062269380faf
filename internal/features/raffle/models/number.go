package models

import (
	"fmt"
	"time"
)

// NumberStatus is the availability state of one ticket number.
type NumberStatus string

const (
	NumberStatusAvailable NumberStatus = "available"
	NumberStatusReserved  NumberStatus = "reserved"
	NumberStatusSold      NumberStatus = "sold"
)

// NumbersPerRaffle is the size of a raffle's number space (000-999).
const NumbersPerRaffle = 1000

// Number is one of the 1000 three-digit tickets belonging to a raffle.
// It carries availability state only; payment data lives on the purchase.
type Number struct {
	ID            int64        `db:"id" json:"id"`
	RaffleID      int64        `db:"raffle_id" json:"raffle_id"`
	Value         string       `db:"value" json:"value"`
	Status        NumberStatus `db:"status" json:"status"`
	UserID        *int64       `db:"user_id" json:"user_id,omitempty"`
	ReservedUntil *time.Time   `db:"reserved_until" json:"reserved_until,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// EffectiveStatus resolves lazy reservation expiry: an expired hold counts
// as available until someone else claims the number.
func (n *Number) EffectiveStatus(now time.Time) NumberStatus {
	if n.Status == NumberStatusReserved && n.ReservedUntil != nil && !n.ReservedUntil.After(now) {
		return NumberStatusAvailable
	}
	return n.Status
}

// FormatValue renders an integer ticket as its canonical zero-padded form.
func FormatValue(i int) string {
	return fmt.Sprintf("%03d", i)
}

// AllValues generates the full "000".."999" number space.
func AllValues() []string {
	values := make([]string, NumbersPerRaffle)
	for i := 0; i < NumbersPerRaffle; i++ {
		values[i] = FormatValue(i)
	}
	return values
}

// InvalidValues returns every value that is not a canonical three-digit
// ticket from the 000-999 domain.
func InvalidValues(values []string) []string {
	var invalid []string
	for _, v := range values {
		if !isValidValue(v) {
			invalid = append(invalid, v)
		}
	}
	return invalid
}

func isValidValue(v string) bool {
	if len(v) != 3 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DuplicateValues returns values that appear more than once in the selection.
func DuplicateValues(values []string) []string {
	seen := make(map[string]int, len(values))
	var dups []string
	for _, v := range values {
		seen[v]++
		if seen[v] == 2 {
			dups = append(dups, v)
		}
	}
	return dups
}
