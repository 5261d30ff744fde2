// Package catalog loads the static mapping of sellable offers.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/beitans8/telegram-ig-agent/internal/errors"
)

// Entry is one sellable offer.
type Entry struct {
	Cost    float64 `json:"cost"`
	Price   float64 `json:"price"`
	Allowed bool    `json:"allowed"`
}

// Catalog maps offer name to entry. Immutable for the process; reloaded
// fresh from disk on every report request, so there is no staleness to manage.
type Catalog map[string]Entry

// Load reads the catalog document at path. A missing or malformed document
// is a CATALOG_UNAVAILABLE error; there is no partial or default fallback.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogUnavailable(err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.NewCatalogUnavailable(err)
	}

	return c, nil
}

// Names returns offer names in sorted order for deterministic rendering.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Allowed returns the subset of offers eligible for recommendation.
func (c Catalog) Allowed() Catalog {
	out := make(Catalog)
	for name, e := range c {
		if e.Allowed {
			out[name] = e
		}
	}
	return out
}

// Render produces the catalog text embedded in the synthesis prompt,
// one offer per line in sorted order.
func (c Catalog) Render() string {
	var b strings.Builder
	for _, name := range c.Names() {
		e := c[name]
		fmt.Fprintf(&b, "- %s: cost $%.2f, sell price $%.2f, allowed=%t\n", name, e.Cost, e.Price, e.Allowed)
	}
	return b.String()
}
