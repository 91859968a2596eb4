// Package source holds the per-upstream-site adapters that turn a
// product identity plus search text into at most one raw quote.
package source

import (
	"context"

	"pricecheck/internal/product"
)

// Source fetches one quote for a product from a single upstream site.
// Implementations are safe for concurrent use.
type Source interface {
	Name() string
	Fetch(ctx context.Context, ids product.Identifiers, query string) (product.SitePrice, error)
}
