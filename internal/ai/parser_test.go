package ai

import (
	"strings"
	"testing"

	"github.com/orderflow/orderflowgo/internal/models"
)

const validPayload = `[
  {
    "order_id": "OF-1025",
    "name": "Fariya Akter",
    "contact": "01836571137",
    "codBill": "650",
    "address": "Duaripara Bazar",
    "status": "Pending"
  }
]`

func TestSanitizeJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"  [1]  ", "[1]"},
		{"[1]", "[1]"},
	}
	for _, tt := range tests {
		if got := SanitizeJSON(tt.in); got != tt.want {
			t.Errorf("SanitizeJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseOrdersAcceptsValidPayload(t *testing.T) {
	orders, err := ParseOrders("```json\n" + validPayload + "\n```")
	if err != nil {
		t.Fatalf("ParseOrders failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	o := orders[0]
	if o.OrderID != "OF-1025" || o.Status != models.OrderStatusPending || o.CodBill != "650" {
		t.Errorf("parsed order wrong: %+v", o)
	}
}

func TestParseOrdersStripsTransitionFields(t *testing.T) {
	payload := strings.Replace(validPayload, `"status": "Pending"`,
		`"status": "Pending", "delivery_agent": "Mallory", "delivery_time": "2024-01-01T00:00:00Z"`, 1)

	orders, err := ParseOrders(payload)
	if err != nil {
		t.Fatalf("ParseOrders failed: %v", err)
	}
	if orders[0].DeliveryAgent != "" || orders[0].DeliveryTime != "" || orders[0].CancelReason != "" {
		t.Errorf("gateway-supplied transition fields must be dropped: %+v", orders[0])
	}
}

func TestParseOrdersRejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"not json", "hello"},
		{"empty array", "[]"},
		{"bad id prefix", strings.Replace(validPayload, "OF-1025", "XX-1025", 1)},
		{"short id", strings.Replace(validPayload, "OF-1025", "OF-25", 1)},
		{"non-pending status", strings.Replace(validPayload, `"status": "Pending"`, `"status": "Delivered"`, 1)},
		{"missing contact", strings.Replace(validPayload, `"contact": "01836571137"`, `"contact": " "`, 1)},
		{"missing name", strings.Replace(validPayload, `"name": "Fariya Akter"`, `"name": ""`, 1)},
	}
	for _, tt := range tests {
		if _, err := ParseOrders(tt.payload); err == nil {
			t.Errorf("%s: expected rejection", tt.name)
		}
	}
}
