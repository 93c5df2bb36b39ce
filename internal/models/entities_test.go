package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateTicketID()
		require.NoError(t, err)
		assert.Len(t, id, TicketIDLength)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(ticketIDCharset, r), "unexpected character %q", r)
		}
		seen[id] = true
	}
	// With a 36^5 space, 100 draws colliding every time would mean a broken
	// generator.
	assert.Greater(t, len(seen), 90)
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"0", 0},
		{"1", 100},
		{"500.00", 50000},
		{"1000.00", 100000},
		{"99.99", 9999},
		{"10.005", 1001}, // round half up at the paise boundary
		{"10.004", 1000},
	}

	for _, tc := range cases {
		got := MinorUnits(decimal.RequireFromString(tc.amount))
		assert.Equal(t, tc.want, got, "amount %s", tc.amount)
	}
}

func TestEffectivePrice(t *testing.T) {
	paid := Event{PricePerTicket: decimal.RequireFromString("250.00")}
	assert.True(t, paid.EffectivePrice().Equal(decimal.RequireFromString("250.00")))

	free := Event{PricePerTicket: decimal.RequireFromString("250.00"), FreeTicket: true}
	assert.True(t, free.EffectivePrice().IsZero(), "free events ignore the stored price")
}
