package sequence

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeCounters struct {
	counts map[string]int
	err    error
}

func (f *fakeCounters) IncrementDailyCounter(_ context.Context, day string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[day]++
	return f.counts[day], nil
}

func TestNextNumbersWithinDay(t *testing.T) {
	gen := NewGenerator(&fakeCounters{})
	now := time.Date(2025, time.August, 28, 14, 30, 0, 0, time.UTC)

	first := gen.Next(context.Background(), "direct-refund", now)
	second := gen.Next(context.Background(), "direct-refund", now)

	if first != "direct-refund-08.28-1" {
		t.Fatalf("unexpected first id: %s", first)
	}
	if second != "direct-refund-08.28-2" {
		t.Fatalf("unexpected second id: %s", second)
	}
}

func TestNextResetsAcrossDays(t *testing.T) {
	gen := NewGenerator(&fakeCounters{})
	day1 := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, time.January, 1, 1, 0, 0, 0, time.UTC)

	gen.Next(context.Background(), "direct-refund", day1)
	id := gen.Next(context.Background(), "direct-refund", day2)

	if id != "direct-refund-01.01-1" {
		t.Fatalf("expected counter to restart on new day, got %s", id)
	}
}

func TestNextFallsBackOnCounterError(t *testing.T) {
	gen := NewGenerator(&fakeCounters{err: errors.New("db down")})
	now := time.Date(2025, time.August, 28, 14, 30, 0, 0, time.UTC)

	id := gen.Next(context.Background(), "direct-refund", now)

	if !strings.HasPrefix(id, "direct-refund-08.28-err-") {
		t.Fatalf("expected fallback id with err marker, got %s", id)
	}
	suffix := strings.TrimPrefix(id, "direct-refund-08.28-err-")
	if len(suffix) != 6 {
		t.Fatalf("expected 6-char random suffix, got %q", suffix)
	}
}
