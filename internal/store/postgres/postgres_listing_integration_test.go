package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"tillpoint/backend/internal/domain"
)

func TestListSalesUnboundedReturnsFullDay(t *testing.T) {
	databaseURL := os.Getenv("TILLPOINT_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set TILLPOINT_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	staffID := fmt.Sprintf("it-staff-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE staff_id = $1`, staffID)
	})

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	const count = 205
	for i := 0; i < count; i++ {
		_, err := s.CreateSale(ctx, domain.Sale{
			StaffID:          staffID,
			SaleDate:         day.Add(time.Duration(i) * time.Second),
			TotalAmountCents: 100,
			PaidCashCents:    100,
		})
		if err != nil {
			t.Fatalf("create sale %d: %v", i, err)
		}
	}

	sales, err := s.ListSales(ctx, staffID, day, day.Add(24*time.Hour), 0)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != count {
		t.Fatalf("expected %d sales for the day, got %d", count, len(sales))
	}

	capped, err := s.ListSales(ctx, staffID, day, day.Add(24*time.Hour), 50)
	if err != nil {
		t.Fatalf("list sales capped: %v", err)
	}
	if len(capped) != 50 {
		t.Fatalf("expected 50 sales with explicit limit, got %d", len(capped))
	}
}
