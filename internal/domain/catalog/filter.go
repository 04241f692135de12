package catalog

import (
	"strings"

	"github.com/xenking/storefront/internal/domain/product"
)

// Filter returns the products whose title contains query, ignoring case.
// A blank query returns products unchanged. The query itself is not trimmed
// for matching, only for the blank check.
func Filter(products []product.Product, query string) []product.Product {
	if strings.TrimSpace(query) == "" {
		return products
	}
	q := strings.ToLower(query)
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	return out
}
