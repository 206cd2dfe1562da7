// Package sequence provides partition-scoped, collision-free number series
// for human-readable document numbers (invoices, repair codes, orders).
package sequence

import (
	"fmt"
	"time"
)

// Series names one monotonic number series.
type Series string

const (
	// SeriesInvoice is partitioned by calendar year.
	SeriesInvoice Series = "invoice"

	// SeriesRepair is partitioned by calendar day.
	SeriesRepair Series = "repair"

	// SeriesOrder is a single global series.
	SeriesOrder Series = "order"
)

// GlobalPartition is the partition key for unpartitioned series.
const GlobalPartition = "GLOBAL"

// YearPartition returns the partition key for year-scoped series.
func YearPartition(t time.Time) string {
	return fmt.Sprintf("%d", t.UTC().Year())
}

// DayPartition returns the partition key for day-scoped series.
func DayPartition(t time.Time) string {
	return t.UTC().Format("20060102")
}

// --- Formatting ---
//
// Formatting is a pure function of (series, partition, number). It is never
// parsed back to derive the high-water mark; migrations from externally
// seeded numbers go through Allocator.SetLastIssued.

// FormatInvoiceNumber renders an invoice number, e.g. "2026/0016".
func FormatInvoiceNumber(yearPartition string, n int64) string {
	return fmt.Sprintf("%s/%04d", yearPartition, n)
}

// FormatRepairCode renders a repair ticket code, e.g. "RIP-20260211-0001".
func FormatRepairCode(dayPartition string, n int64) string {
	return fmt.Sprintf("RIP-%s-%04d", dayPartition, n)
}

// FormatOrderNumber renders a purchase order number, e.g. "ORD-000042".
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("ORD-%06d", n)
}
