package export

import (
	"fmt"
	"strings"

	"github.com/orderflow/orderflowgo/internal/models"
)

// FormatOrder renders one order as the six fixed labeled lines used by
// the copy-to-clipboard and plain-text views. Line order is part of the
// contract.
func FormatOrder(o models.OrderRecord) string {
	return fmt.Sprintf("ID: %s\nNAME: %s\nCONTACT: %s\nCOD BILL: %s\nADDRESS: %s\nSTATUS: %s",
		o.OrderID, o.Name, o.Contact, o.CodBill, o.Address, o.Status)
}

// FormatAll renders the full list in input order, records separated by a
// blank line.
func FormatAll(orders []models.OrderRecord) string {
	blocks := make([]string, 0, len(orders))
	for _, o := range orders {
		blocks = append(blocks, FormatOrder(o))
	}
	return strings.Join(blocks, "\n\n")
}
