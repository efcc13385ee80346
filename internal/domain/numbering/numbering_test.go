package numbering_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/numbering"
)

func TestOrderNumber_Format(t *testing.T) {
	assert.Equal(t, "25001", numbering.OrderNumber(2025, 1))
	assert.Equal(t, "25042", numbering.OrderNumber(2025, 42))
	assert.Equal(t, "26999", numbering.OrderNumber(2026, 999))
}

func TestOrderNumber_GrowsPastThreeDigits(t *testing.T) {
	assert.Equal(t, "251000", numbering.OrderNumber(2025, 1000),
		"sequence must keep growing, not wrap or truncate")
}

func TestOrderNumber_YearRollover(t *testing.T) {
	assert.Equal(t, "00001", numbering.OrderNumber(2100, 1),
		"century rollover keeps the two-digit year format")
}

func TestDerivedNumbers_RoundTrip(t *testing.T) {
	order := numbering.OrderNumber(2025, 42)
	ws := numbering.WorksheetNumber(order)
	annex := numbering.AnnexNumber(ws)

	assert.Equal(t, "DN-25042", ws)
	assert.Equal(t, "MDR-DN-25042", annex)
}

func TestInvoiceNumber_Format(t *testing.T) {
	assert.Equal(t, "RAC-2025-001", numbering.InvoiceNumber(2025, 1))
	assert.Equal(t, "RAC-2025-120", numbering.InvoiceNumber(2025, 120))
	assert.Equal(t, "RAC-2026-1000", numbering.InvoiceNumber(2026, 1000))
}

func TestParseInvoiceSeq(t *testing.T) {
	seq, ok := numbering.ParseInvoiceSeq("RAC-2025-007", 2025)
	assert.True(t, ok)
	assert.Equal(t, 7, seq)

	_, ok = numbering.ParseInvoiceSeq("RAC-2024-007", 2025)
	assert.False(t, ok, "other years must be ignored")

	_, ok = numbering.ParseInvoiceSeq("RAC-2025-abc", 2025)
	assert.False(t, ok)

	_, ok = numbering.ParseInvoiceSeq("", 2025)
	assert.False(t, ok)
}

func TestNextInvoiceSeq_EmptyYearStartsAtOne(t *testing.T) {
	assert.Equal(t, 1, numbering.NextInvoiceSeq(nil, 2025))
	assert.Equal(t, 1, numbering.NextInvoiceSeq([]string{"RAC-2024-050"}, 2025),
		"previous year's numbers do not carry over")
}

func TestNextInvoiceSeq_TakesNumericMax(t *testing.T) {
	existing := []string{"RAC-2025-001", "RAC-2025-003", "RAC-2025-002"}
	assert.Equal(t, 4, numbering.NextInvoiceSeq(existing, 2025))
}

func TestNextInvoiceSeq_NumericNotLexicographic(t *testing.T) {
	// "999" sorts after "1000" as strings; the scan must still pick 1000.
	existing := []string{"RAC-2025-999", "RAC-2025-1000"}
	assert.Equal(t, 1001, numbering.NextInvoiceSeq(existing, 2025))
}

func TestOrderCounterKey(t *testing.T) {
	assert.Equal(t, "next_order_number_2025", numbering.OrderCounterKey(2025))
}
