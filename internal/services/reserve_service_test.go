package services

import (
	"testing"

	"retail-backend/internal/ledger"
)

func TestReleaseRowsDocumentReturnedLines(t *testing.T) {
	lines := []ledger.ReserveLine{
		{ProductID: 11, QtyReserved: 5, QtyTaken: 2, UnitPrice: 100},
		{ProductID: 12, QtyReserved: 3, QtyTaken: 3, UnitPrice: 50},
		{ProductID: 13, QtyReserved: 4, QtyTaken: 0, UnitPrice: 25},
	}
	split, err := ledger.SplitReserve(lines)
	if err != nil {
		t.Fatalf("SplitReserve: %v", err)
	}

	rows := releaseRows(90, split.Returned)

	// product 12 was fully taken and must not appear
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}
	if rows[0].ProductID != 11 || rows[0].Quantity != 3 {
		t.Errorf("row 0 = %+v, want product 11 qty 3", rows[0])
	}
	if rows[1].ProductID != 13 || rows[1].Quantity != 4 {
		t.Errorf("row 1 = %+v, want product 13 qty 4", rows[1])
	}
	for _, row := range rows {
		if row.SaleID != 90 {
			t.Errorf("row %+v not linked to sale 90", row)
		}
		if row.RefundAmount != 0 {
			t.Errorf("released line carries a refund: %+v", row)
		}
		if !row.IsReserveRelease {
			t.Errorf("row %+v not flagged as reserve release", row)
		}
	}
}

func TestReleaseRowsEmptyWhenEverythingTaken(t *testing.T) {
	split, err := ledger.SplitReserve([]ledger.ReserveLine{
		{ProductID: 1, QtyReserved: 2, QtyTaken: 2, UnitPrice: 10},
	})
	if err != nil {
		t.Fatalf("SplitReserve: %v", err)
	}
	if rows := releaseRows(1, split.Returned); len(rows) != 0 {
		t.Errorf("got %d rows, want none", len(rows))
	}
}
