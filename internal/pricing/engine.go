// Package pricing resolves the unit price applicable to a customer tier.
package pricing

import "github.com/yusapos/backend-pos/internal/domain"

// ResolveUnitPrice returns the price column matching the classification.
// Unknown or missing classifications resolve to the general price; the
// function never fails.
func ResolveUnitPrice(p domain.Product, class domain.Classification) domain.Money {
	switch class {
	case domain.ClassAgen:
		return p.PriceAgen
	case domain.ClassDistributor:
		return p.PriceDistributor
	default:
		return p.PriceGeneral
	}
}

// Item describes a line used for total computation.
type Item struct {
	Qty       int
	UnitPrice domain.Money
}

// Total sums qty times unit price over the provided items. Non-positive
// quantities contribute nothing.
func Total(items []Item) domain.Money {
	var total domain.Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		total += domain.Money(it.Qty) * it.UnitPrice
	}
	return total
}
