// Package payload builds sample documents for harness runs.
package payload

import (
	"fmt"
	"math/rand/v2"
)

// InvoiceNumber formats a sequence index as the invoice reference
// used in artifact filenames and the document itself.
func InvoiceNumber(seq int) string {
	return fmt.Sprintf("%04d", seq)
}

// Invoice builds the sample invoice document for one lifecycle.
// The sequence index is baked into the invoice number and customer fields so
// concurrent lifecycles never collide on identifiers.
func Invoice(seq int) map[string]any {
	num := InvoiceNumber(seq)
	quantity := rand.IntN(10) + 1

	return map[string]any{
		"invoice": map[string]any{
			"number": "INV-2025-" + num,
			"company": map[string]any{
				"name":    "Petty PDF Solutions Inc.",
				"address": "123 Document Lane",
				"city":    "San Francisco",
				"zip":     "94102",
			},
			"customer": map[string]any{
				"name":  fmt.Sprintf("Customer %s Corp.", num),
				"email": fmt.Sprintf("billing%s@example.com", num),
			},
			"items": []map[string]any{
				{
					"description": "PDF Generation Service - Premium Plan",
					"quantity":    1,
					"price":       "299.00",
					"total":       "299.00",
				},
				{
					"description": "API Calls (10,000 requests)",
					"quantity":    quantity,
					"price":       "49.00",
					"total":       fmt.Sprintf("%d.00", 49*quantity),
				},
			},
			"subtotal": "594.00",
			"tax_rate": "8.5",
			"tax":      "50.49",
			"total":    "644.49",
		},
	}
}
