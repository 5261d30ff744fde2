package usage

import (
	"testing"
	"time"

	"github.com/beitans8/telegram-ig-agent/internal/errors"
)

func TestAppendAggregate_RoundTrip(t *testing.T) {
	ledger := NewLedger(t.TempDir())

	if err := ledger.Append("openai", 120, 0.0034); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rows, err := ledger.Aggregate(time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Provider != "openai" {
		t.Errorf("Provider = %q, want openai", rows[0].Provider)
	}
	if rows[0].Units != 120 {
		t.Errorf("Units = %d, want 120", rows[0].Units)
	}
	if rows[0].Cost != 0.0034 {
		t.Errorf("Cost = %v, want 0.0034", rows[0].Cost)
	}
}

func TestAggregate_TwoProviders(t *testing.T) {
	ledger := NewLedger(t.TempDir())

	if err := ledger.Append("openai", 120, 0.0034); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := ledger.Append("brave", 5, 0.0); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rows, err := ledger.Aggregate(time.Now().UTC().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	// Rows are ordered by provider name
	if rows[0].Provider != "brave" || rows[0].Units != 5 || rows[0].Cost != 0.0 {
		t.Errorf("brave row = %+v", rows[0])
	}
	if rows[1].Provider != "openai" || rows[1].Units != 120 || rows[1].Cost != 0.0034 {
		t.Errorf("openai row = %+v", rows[1])
	}

	var total float64
	for _, r := range rows {
		total += r.Cost
	}
	if total != 0.0034 {
		t.Errorf("total cost = %v, want 0.0034", total)
	}
}

func TestAggregate_SumsPerProvider(t *testing.T) {
	ledger := NewLedger(t.TempDir())

	if err := ledger.Append("openai", 100, 0.001); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := ledger.Append("openai", 50, 0.002); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rows, err := ledger.Aggregate(time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Units != 150 {
		t.Errorf("Units = %d, want 150", rows[0].Units)
	}
	if rows[0].Cost != 0.003 {
		t.Errorf("Cost = %v, want 0.003", rows[0].Cost)
	}
}

func TestAggregate_FutureWindowExcludes(t *testing.T) {
	ledger := NewLedger(t.TempDir())

	if err := ledger.Append("openai", 10, 0.01); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rows, err := ledger.Aggregate(time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(rows) != 0 {
		t.Errorf("got %d rows for a future window, want 0", len(rows))
	}
}

func TestAggregate_MonotonicAsWindowShrinks(t *testing.T) {
	ledger := NewLedger(t.TempDir())

	if err := ledger.Append("openai", 10, 0.01); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	now := time.Now().UTC()
	wide, err := ledger.Aggregate(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	narrow, err := ledger.Aggregate(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if totalCost(narrow) > totalCost(wide) {
		t.Errorf("narrower window cost %v exceeds wider window cost %v",
			totalCost(narrow), totalCost(wide))
	}
	if totalUnits(narrow) > totalUnits(wide) {
		t.Errorf("narrower window units %d exceed wider window units %d",
			totalUnits(narrow), totalUnits(wide))
	}
}

func TestAppend_RejectsNegativeUnits(t *testing.T) {
	ledger := NewLedger(t.TempDir())

	err := ledger.Append("openai", -1, 0.0)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestAppend_RejectsNegativeCost(t *testing.T) {
	ledger := NewLedger(t.TempDir())

	err := ledger.Append("openai", 1, -0.5)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestAppend_RejectsEmptyProvider(t *testing.T) {
	ledger := NewLedger(t.TempDir())

	err := ledger.Append("  ", 1, 0.0)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestFormatReport(t *testing.T) {
	rows := []ProviderUsage{
		{Provider: "brave", Units: 5, Cost: 0.0},
		{Provider: "openai", Units: 120, Cost: 0.0034},
	}

	got := FormatReport(rows)
	want := "📊 Daily Usage Report\n\n" +
		"brave: 5 units | $0.0000\n" +
		"openai: 120 units | $0.0034\n" +
		"\nTotal: $0.0034"

	if got != want {
		t.Errorf("FormatReport() = %q, want %q", got, want)
	}
}

func TestFormatReport_Empty(t *testing.T) {
	got := FormatReport(nil)
	want := "📊 Daily Usage Report\n\n\nTotal: $0.0000"

	if got != want {
		t.Errorf("FormatReport() = %q, want %q", got, want)
	}
}

func totalCost(rows []ProviderUsage) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.Cost
	}
	return sum
}

func totalUnits(rows []ProviderUsage) int64 {
	var sum int64
	for _, r := range rows {
		sum += r.Units
	}
	return sum
}
