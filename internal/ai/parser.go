package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/orderflow/orderflowgo/internal/models"
)

// ErrExtraction is the single generic failure surfaced to the operator.
// Gateway failure subtypes (network, parse, validation) are not
// distinguished; details go to the log only.
var ErrExtraction = errors.New("failed to process data, please check your input and try again")

var orderIDPattern = regexp.MustCompile(`^OF-\d{4}$`)

// SanitizeJSON cleans raw AI output to extract valid JSON.
// It removes Markdown code fences (```json ... ```) and whitespace.
func SanitizeJSON(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}

	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSuffix(cleaned, "```")
	}

	return strings.TrimSpace(cleaned)
}

// ParseOrders parses and validates the gateway's JSON payload. Every
// record must carry an OF-dddd id, all five text fields, and status
// Pending; anything else rejects the whole batch.
func ParseOrders(raw string) ([]models.OrderRecord, error) {
	cleaned := SanitizeJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty payload")
	}

	var orders []models.OrderRecord
	if err := json.Unmarshal([]byte(cleaned), &orders); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("no orders in payload")
	}

	for i := range orders {
		if err := validateRecord(&orders[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return orders, nil
}

func validateRecord(o *models.OrderRecord) error {
	if !orderIDPattern.MatchString(o.OrderID) {
		return fmt.Errorf("order_id %q does not match OF-dddd", o.OrderID)
	}
	if o.Status != models.OrderStatusPending {
		return fmt.Errorf("status must be Pending, got %q", o.Status)
	}
	for field, value := range map[string]string{
		"name":    o.Name,
		"contact": o.Contact,
		"codBill": o.CodBill,
		"address": o.Address,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("missing %s", field)
		}
	}
	// A fresh record never carries transition side effects
	o.DeliveryAgent = ""
	o.DeliveryTime = ""
	o.CancelReason = ""
	return nil
}
