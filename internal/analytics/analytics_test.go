package analytics

import (
	"testing"

	"github.com/orderflow/orderflowgo/internal/models"
)

func order(id string, status models.OrderStatus) models.OrderRecord {
	o := models.OrderRecord{
		OrderID: id,
		Name:    "Customer " + id,
		Contact: "017" + id,
		CodBill: "500",
		Address: "Address " + id,
		Status:  status,
	}
	if status == models.OrderStatusDelivered {
		o.DeliveryAgent = "Agent Rahim"
		o.DeliveryTime = "2024-05-01T14:00:00Z"
	}
	return o
}

func cancelled(id, reason string) models.OrderRecord {
	o := order(id, models.OrderStatusCancelled)
	o.CancelReason = reason
	return o
}

func TestComputeEmptyList(t *testing.T) {
	s := Compute(nil)
	if s.Total != 0 || s.SuccessRate != 0 {
		t.Errorf("empty list should yield zero total and rate, got %+v", s)
	}
	if len(s.CancelReasons) != 0 {
		t.Errorf("empty list should yield empty histogram, got %v", s.CancelReasons)
	}
}

func TestComputeCountsAndSuccessRate(t *testing.T) {
	s := Compute([]models.OrderRecord{
		order("OF-1001", models.OrderStatusDelivered),
		order("OF-1002", models.OrderStatusDelivered),
		cancelled("OF-1003", "Phone unreachable"),
		order("OF-1004", models.OrderStatusPending),
	})

	if s.Total != 4 || s.Delivered != 2 || s.Cancelled != 1 || s.Pending != 1 || s.OutForDelivery != 0 {
		t.Errorf("wrong counts: %+v", s)
	}
	if s.SuccessRate != 50 {
		t.Errorf("successRate = %d, want 50", s.SuccessRate)
	}
}

func TestSuccessRateRoundsHalfUp(t *testing.T) {
	tests := []struct {
		delivered, total int
		want             int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{1, 1, 100},
		{0, 5, 0},
	}
	for _, tt := range tests {
		list := make([]models.OrderRecord, 0, tt.total)
		for i := 0; i < tt.delivered; i++ {
			list = append(list, order("OF-1000", models.OrderStatusDelivered))
		}
		for i := tt.delivered; i < tt.total; i++ {
			list = append(list, order("OF-2000", models.OrderStatusPending))
		}
		if got := Compute(list).SuccessRate; got != tt.want {
			t.Errorf("successRate(%d/%d) = %d, want %d", tt.delivered, tt.total, got, tt.want)
		}
	}
}

func TestCancelReasonHistogram(t *testing.T) {
	s := Compute([]models.OrderRecord{
		cancelled("OF-1001", "Phone unreachable"),
		cancelled("OF-1002", "Phone unreachable"),
		cancelled("OF-1003", "Refused delivery"),
		order("OF-1004", models.OrderStatusCancelled), // no reason, excluded
		order("OF-1005", models.OrderStatusPending),
	})

	if s.CancelReasons["Phone unreachable"] != 2 || s.CancelReasons["Refused delivery"] != 1 {
		t.Errorf("wrong histogram: %v", s.CancelReasons)
	}
	if len(s.CancelReasons) != 2 {
		t.Errorf("reasonless cancellations must not appear in the histogram: %v", s.CancelReasons)
	}
}

func TestRepeatedCustomer(t *testing.T) {
	a := order("OF-1001", models.OrderStatusPending)
	a.Contact = "01712345678"
	a.Address = "House 1, Mirpur"

	sameContact := order("OF-1002", models.OrderStatusPending)
	sameContact.Contact = "01712345678"
	sameContact.Address = "A completely different address"

	unique := order("OF-1003", models.OrderStatusPending)
	unique.Contact = "01900000000"
	unique.Address = "Banani 11"

	all := []models.OrderRecord{a, sameContact, unique}

	if !RepeatedCustomer(a, all) {
		t.Error("shared contact with different address should flag as repeated")
	}
	if !RepeatedCustomer(sameContact, all) {
		t.Error("the other half of the pair should flag too")
	}
	if RepeatedCustomer(unique, all) {
		t.Error("unique contact and address must not flag")
	}
	if RepeatedCustomer(unique, []models.OrderRecord{unique}) {
		t.Error("a single order only matches itself, count 1 is not repeated")
	}
}

func TestRepeatedCustomerMatchesOnAddressToo(t *testing.T) {
	a := order("OF-1001", models.OrderStatusPending)
	a.Contact = "111"
	a.Address = "Same Street 5"
	b := order("OF-1002", models.OrderStatusPending)
	b.Contact = "222"
	b.Address = "Same Street 5"

	if !RepeatedCustomer(a, []models.OrderRecord{a, b}) {
		t.Error("shared address should flag as repeated")
	}
}
