package models

import "time"

// OrderStatus defines possible delivery statuses for an order
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "Pending"          // Extracted, not yet dispatched
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery" // Handed to the delivery agent
	OrderStatusDelivered      OrderStatus = "Delivered"        // Terminal
	OrderStatusCancelled      OrderStatus = "Cancelled"        // Terminal
)

// AllStatuses lists every status in display order
var AllStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid reports whether s is one of the known statuses
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is exposed from s
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// OrderRecord is one delivery order as extracted by the AI gateway.
// JSON field names are frozen for compatibility with previously saved
// history, do not rename them.
type OrderRecord struct {
	OrderID       string      `json:"order_id"`
	Name          string      `json:"name"`
	Contact       string      `json:"contact"`
	CodBill       string      `json:"codBill"` // Currency amount kept as text to preserve original formatting
	Address       string      `json:"address"`
	Status        OrderStatus `json:"status"`
	DeliveryAgent string      `json:"delivery_agent,omitempty"`
	DeliveryTime  string      `json:"delivery_time,omitempty"` // RFC3339, set at the Delivered transition
	CancelReason  string      `json:"cancel_reason,omitempty"`
}

// Validate checks the status/field coupling invariant: delivery details
// exist iff Delivered, a cancel reason exists iff Cancelled.
func (o *OrderRecord) Validate() error {
	if !o.Status.IsValid() {
		return &InvariantError{OrderID: o.OrderID, Problem: "unknown status " + string(o.Status)}
	}
	delivered := o.Status == OrderStatusDelivered
	if delivered != (o.DeliveryAgent != "" && o.DeliveryTime != "") {
		return &InvariantError{OrderID: o.OrderID, Problem: "delivery details must be set exactly when status is Delivered"}
	}
	if !delivered && (o.DeliveryAgent != "" || o.DeliveryTime != "") {
		return &InvariantError{OrderID: o.OrderID, Problem: "delivery details present on non-delivered order"}
	}
	cancelled := o.Status == OrderStatusCancelled
	if cancelled != (o.CancelReason != "") {
		return &InvariantError{OrderID: o.OrderID, Problem: "cancel reason must be set exactly when status is Cancelled"}
	}
	return nil
}

// InvariantError reports a violated order invariant
type InvariantError struct {
	OrderID string
	Problem string
}

func (e *InvariantError) Error() string {
	return "order " + e.OrderID + ": " + e.Problem
}

// OrderPatch carries the admin-editable fields of an order.
// Only these four fields may change through an edit.
type OrderPatch struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	CodBill string `json:"codBill"`
	Address string `json:"address"`
}

// Apply overwrites the editable fields of o with the patch values
func (p OrderPatch) Apply(o *OrderRecord) {
	o.Name = p.Name
	o.Contact = p.Contact
	o.CodBill = p.CodBill
	o.Address = p.Address
}

// NowRFC3339 formats t the way delivery_time is stored
func NowRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
