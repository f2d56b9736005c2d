package data

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTransitionTable checks the table is total and exact: every allowed pair
// passes, every other pair fails.
func TestTransitionTable(t *testing.T) {
	statuses := []OrderStatus{
		OrderStatusPending, OrderStatusActive, OrderStatusCompleted, OrderStatusCancelled,
	}
	allowed := map[OrderStatus]map[OrderStatus]bool{
		OrderStatusPending:   {OrderStatusActive: true, OrderStatusCancelled: true},
		OrderStatusActive:    {OrderStatusCompleted: true, OrderStatusCancelled: true},
		OrderStatusCompleted: {},
		OrderStatusCancelled: {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			require.Equal(t, allowed[from][to], from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestNothingReentersPending(t *testing.T) {
	for from := range allowedTransitions {
		require.False(t, from.CanTransitionTo(OrderStatusPending), "from %s", from)
	}
}

func TestStatusValid(t *testing.T) {
	require.True(t, OrderStatusPending.Valid())
	require.False(t, OrderStatus("unknown").Valid())
	require.False(t, OrderStatus("").Valid())
}
