package analytics

import (
	"math"

	"github.com/orderflow/orderflowgo/internal/models"
)

// Summary aggregates one order list for the dashboard and the daily
// report.
type Summary struct {
	Total          int            `json:"total"`
	Delivered      int            `json:"delivered"`
	Cancelled      int            `json:"cancelled"`
	Pending        int            `json:"pending"`
	OutForDelivery int            `json:"outForDelivery"`
	SuccessRate    int            `json:"successRate"` // round(100*delivered/total), 0 when empty
	CancelReasons  map[string]int `json:"cancelReasons"`
}

// Compute builds the summary over a flat order list. The reason
// histogram counts only Cancelled orders carrying a non-empty reason.
func Compute(orders []models.OrderRecord) Summary {
	s := Summary{CancelReasons: map[string]int{}}
	for _, o := range orders {
		s.Total++
		switch o.Status {
		case models.OrderStatusDelivered:
			s.Delivered++
		case models.OrderStatusCancelled:
			s.Cancelled++
			if o.CancelReason != "" {
				s.CancelReasons[o.CancelReason]++
			}
		case models.OrderStatusPending:
			s.Pending++
		case models.OrderStatusOutForDelivery:
			s.OutForDelivery++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = int(math.Round(100 * float64(s.Delivered) / float64(s.Total)))
	}
	return s
}

// RepeatedCustomer reports whether two or more orders in allOrders share
// the order's address or contact. Raw string equality, no normalization;
// the order itself counts toward the two.
func RepeatedCustomer(order models.OrderRecord, allOrders []models.OrderRecord) bool {
	matches := 0
	for _, o := range allOrders {
		if o.Address == order.Address || o.Contact == order.Contact {
			matches++
			if matches >= 2 {
				return true
			}
		}
	}
	return false
}
