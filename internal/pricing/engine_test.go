package pricing

import (
	"testing"

	"github.com/yusapos/backend-pos/internal/domain"
)

func TestResolveUnitPricePerTier(t *testing.T) {
	p := domain.Product{PriceGeneral: 12_000, PriceAgen: 11_000, PriceDistributor: 10_000}

	cases := []struct {
		class domain.Classification
		want  domain.Money
	}{
		{domain.ClassGeneral, 12_000},
		{domain.ClassAgen, 11_000},
		{domain.ClassDistributor, 10_000},
		{domain.Classification("reseller"), 12_000},
		{domain.Classification(""), 12_000},
	}
	for _, tc := range cases {
		if got := ResolveUnitPrice(p, tc.class); got != tc.want {
			t.Fatalf("ResolveUnitPrice(%q) = %d, want %d", tc.class, got, tc.want)
		}
	}
}

func TestTotalSkipsNonPositiveQty(t *testing.T) {
	items := []Item{
		{Qty: 3, UnitPrice: 4_000},
		{Qty: 0, UnitPrice: 99_999},
		{Qty: -2, UnitPrice: 99_999},
		{Qty: 1, UnitPrice: 500},
	}
	if got := Total(items); got != 12_500 {
		t.Fatalf("Total = %d, want 12500", got)
	}
}
