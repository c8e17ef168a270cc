package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter describes the product-list refinements a shopper can combine.
// Zero values mean "no constraint".
type Filter struct {
	Search   string
	Category string
	SaleOnly bool
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

// FilterProducts returns the products matching every constraint in f. The
// input slice is never mutated. Search matches case-insensitively against
// name and description; price bounds apply to the effective price.
func FilterProducts(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	search := strings.ToLower(f.Search)

	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if f.Category != "" && f.Category != "All" && p.Category != f.Category {
			continue
		}
		if f.SaleOnly && !p.Sale {
			continue
		}
		price := p.EffectivePrice()
		if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
			continue
		}
		out = append(out, p)
	}

	return out
}

// SortProducts returns a sorted copy of products. An unknown or empty key
// preserves the input order.
func SortProducts(products []Product, key SortKey) []Product {
	out := make([]Product, len(products))
	copy(out, products)

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectivePrice().LessThan(out[j].EffectivePrice())
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[j].EffectivePrice().LessThan(out[i].EffectivePrice())
		})
	case SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Name < out[j].Name
		})
	case SortNameDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[j].Name < out[i].Name
		})
	}

	return out
}
