package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllValues(t *testing.T) {
	values := AllValues()

	require.Len(t, values, NumbersPerRaffle)
	assert.Equal(t, "000", values[0])
	assert.Equal(t, "007", values[7])
	assert.Equal(t, "999", values[999])
}

func TestInvalidValues(t *testing.T) {
	assert.Empty(t, InvalidValues([]string{"000", "042", "999"}))

	invalid := InvalidValues([]string{"000", "42", "1000", "abc", "0 1", ""})
	assert.Equal(t, []string{"42", "1000", "abc", "0 1", ""}, invalid)
}

func TestDuplicateValues(t *testing.T) {
	assert.Empty(t, DuplicateValues([]string{"001", "002", "003"}))
	assert.Equal(t, []string{"007"}, DuplicateValues([]string{"007", "001", "007", "007"}))
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	uid := int64(1)

	tests := []struct {
		name   string
		number Number
		want   NumberStatus
	}{
		{"available stays available", Number{Status: NumberStatusAvailable}, NumberStatusAvailable},
		{"sold stays sold", Number{Status: NumberStatusSold, UserID: &uid}, NumberStatusSold},
		{"live hold is reserved", Number{Status: NumberStatusReserved, UserID: &uid, ReservedUntil: &future}, NumberStatusReserved},
		{"expired hold reads as available", Number{Status: NumberStatusReserved, UserID: &uid, ReservedUntil: &past}, NumberStatusAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.number.EffectiveStatus(now))
		})
	}
}
