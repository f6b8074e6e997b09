package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to packed", OrderStatusPending, OrderStatusPacked, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"pending to shipped skips packed", OrderStatusPending, OrderStatusShipped, false},
		{"packed to shipped", OrderStatusPacked, OrderStatusShipped, true},
		{"packed to cancelled", OrderStatusPacked, OrderStatusCancelled, true},
		{"shipped to completed", OrderStatusShipped, OrderStatusCompleted, true},
		{"shipped cannot cancel", OrderStatusShipped, OrderStatusCancelled, false},
		{"completed is terminal", OrderStatusCompleted, OrderStatusCancelled, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusPacked, false},
		{"unknown status", "unknown", OrderStatusPacked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Status: tt.from}
			assert.Equal(t, tt.allowed, order.CanTransitionTo(tt.to))
		})
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range ValidOrderStatuses() {
		assert.True(t, IsValidOrderStatus(s))
	}
	assert.False(t, IsValidOrderStatus("delivered"))
	assert.False(t, IsValidOrderStatus(""))
}
