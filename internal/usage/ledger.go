// Package usage implements the append-only per-call usage/cost ledger.
package usage

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/beitans8/telegram-ig-agent/internal/db"
	"github.com/beitans8/telegram-ig-agent/internal/errors"
)

// tsLayout is a fixed-width UTC timestamp layout. Fixed width means the
// ts >= ? window filter in Aggregate works as a plain string comparison.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// ProviderUsage is the aggregate for one provider over a time window.
type ProviderUsage struct {
	Provider string
	Units    int64
	Cost     float64
}

// Ledger appends and aggregates usage rows. The database is opened per call
// and closed immediately after; write volume is low and no multi-statement
// atomicity is required across calls.
type Ledger struct {
	BaseDir string
}

// NewLedger creates a ledger rooted at baseDir.
func NewLedger(baseDir string) *Ledger {
	return &Ledger{BaseDir: baseDir}
}

// Append inserts one row with the current UTC timestamp. Storage errors are
// returned, never swallowed: undercounting cost is a correctness violation.
func (l *Ledger) Append(provider string, units int64, cost float64) error {
	if strings.TrimSpace(provider) == "" {
		return errors.NewInvalidRequest("provider must not be empty")
	}
	if units < 0 {
		return errors.NewInvalidRequest("units must be non-negative")
	}
	if cost < 0 {
		return errors.NewInvalidRequest("cost must be non-negative")
	}

	id, err := generateULID()
	if err != nil {
		return errors.NewLedgerWriteFailed(err)
	}

	database, err := db.Open(l.BaseDir)
	if err != nil {
		return errors.NewLedgerWriteFailed(err)
	}
	defer database.Close()

	ts := time.Now().UTC().Format(tsLayout)
	_, err = database.Exec(
		"INSERT INTO usage (id, ts, provider, units, cost) VALUES (?, ?, ?, ?, ?)",
		id, ts, provider, units, cost,
	)
	if err != nil {
		return errors.NewLedgerWriteFailed(err)
	}

	return nil
}

// Aggregate returns per-provider sums of units and cost for rows with
// ts >= since. Providers with no rows in the window are omitted; callers
// must treat absence as zero.
func (l *Ledger) Aggregate(since time.Time) ([]ProviderUsage, error) {
	database, err := db.Open(l.BaseDir)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer database.Close()

	query := `
		SELECT provider, SUM(units), SUM(cost)
		FROM usage
		WHERE ts >= ?
		GROUP BY provider
		ORDER BY provider
	`

	rows, err := database.Query(query, since.UTC().Format(tsLayout))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var result []ProviderUsage
	for rows.Next() {
		var pu ProviderUsage
		if err := rows.Scan(&pu.Provider, &pu.Units, &pu.Cost); err != nil {
			return nil, errors.NewInternal(err)
		}
		result = append(result, pu)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return result, nil
}

// FormatReport renders the multi-line usage summary with a grand total.
func FormatReport(rows []ProviderUsage) string {
	var b strings.Builder
	b.WriteString("📊 Daily Usage Report\n\n")

	var total float64
	for _, r := range rows {
		total += r.Cost
		fmt.Fprintf(&b, "%s: %d units | $%.4f\n", r.Provider, r.Units, r.Cost)
	}

	fmt.Fprintf(&b, "\nTotal: $%.4f", total)
	return b.String()
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
