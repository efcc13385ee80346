// Package numbering produces the document numbers other systems depend on.
// The formats are bit-exact contracts: order numbers are YYNNN, worksheet
// numbers DN-YYNNN, Annex XIII numbers MDR-DN-YYNNN and invoice numbers
// RAC-YYYY-NNN. Worksheet and annex numbers are pure derivations of the order
// number, never stored counters, so they can always be recomputed and can
// never drift.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
)

// OrderNumber formats the nth order of a year, e.g. year 2025, seq 42 gives
// "25042". The sequence keeps growing past 999 (sequence 1000 gives "251000");
// numbers never wrap within a year.
func OrderNumber(year, seq int) string {
	return fmt.Sprintf("%02d%03d", year%100, seq)
}

// WorksheetNumber derives the production sheet number from its order.
func WorksheetNumber(orderNumber string) string {
	return "DN-" + orderNumber
}

// AnnexNumber derives the Annex XIII document number from the work sheet.
func AnnexNumber(worksheetNumber string) string {
	return "MDR-" + worksheetNumber
}

// InvoiceNumber formats the nth finalized invoice of a year, e.g. year 2025,
// seq 7 gives "RAC-2025-007".
func InvoiceNumber(year, seq int) string {
	return fmt.Sprintf("RAC-%04d-%03d", year, seq)
}

// InvoicePrefix is the LIKE prefix for all invoice numbers of a year.
func InvoicePrefix(year int) string {
	return fmt.Sprintf("RAC-%04d-", year)
}

// ParseInvoiceSeq extracts the numeric sequence from an invoice number of the
// given year. Returns false for numbers from other years or malformed input.
// Parsing numerically rather than comparing strings keeps the max-scan correct
// once a year passes 999 invoices and "1000" sorts before "999".
func ParseInvoiceSeq(number string, year int) (int, bool) {
	prefix := InvoicePrefix(year)
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}

// NextInvoiceSeq scans existing invoice numbers and returns the next sequence
// for the year, starting at 1. Numbers from other years and malformed strings
// are ignored. Callers must hold the per-year finalization lock while using
// the result, otherwise two finalizations can derive the same number.
func NextInvoiceSeq(existing []string, year int) int {
	max := 0
	for _, n := range existing {
		if seq, ok := ParseInvoiceSeq(n, year); ok && seq > max {
			max = seq
		}
	}
	return max + 1
}

// OrderCounterKey names the counter row holding the next order sequence
// for a year.
func OrderCounterKey(year int) string {
	return fmt.Sprintf("next_order_number_%04d", year)
}
