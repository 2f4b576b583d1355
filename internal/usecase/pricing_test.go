package usecase_test

import (
	"testing"

	"cinema-tickets/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestSeatPriceCents(t *testing.T) {
	tests := []struct {
		name    string
		base    int64
		premium int
		want    int64
	}{
		{"standard seat keeps base price", 10000, 0, 10000},
		{"fifty percent premium", 10000, 50, 15000},
		{"hundred percent premium doubles", 2500, 100, 5000},
		{"rounds half up", 999, 25, 1249},  // 999 * 1.25 = 1248.75
		{"rounds down below half", 101, 10, 111}, // 101 * 1.10 = 111.1
		{"zero base", 0, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.SeatPriceCents(tt.base, tt.premium))
		})
	}
}

func TestSeatPriceCentsDeterministic(t *testing.T) {
	first := usecase.SeatPriceCents(12345, 33)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, usecase.SeatPriceCents(12345, 33))
	}
}

func TestSeatPriceCentsMonotonicInPremium(t *testing.T) {
	prev := usecase.SeatPriceCents(10000, 0)
	for premium := 1; premium <= 200; premium++ {
		price := usecase.SeatPriceCents(10000, premium)
		assert.GreaterOrEqual(t, price, prev, "premium %d", premium)
		prev = price
	}
}
