package query

import (
	"strings"

	"product-catalog/internal/products"
)

const tieBreaker = "id ASC"

var sortColumns = map[products.SortField]string{
	products.SortCreatedAt: "created_at",
	products.SortPrice:     "supply_price",
	products.SortQuantity:  "quantity",
}

// Ordering maps sort requests to ORDER BY terms. Unknown fields are dropped.
func Ordering(orders []products.SortOrder) []string {
	terms := make([]string, 0, len(orders))
	for _, o := range orders {
		column, ok := sortColumns[o.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if o.Direction == products.Desc {
			dir = "DESC"
		}
		terms = append(terms, column+" "+dir)
	}
	return terms
}

// OrderBy renders the ORDER BY clause. The id tie-breaker keeps page
// boundaries stable, and is the whole ordering when no term is recognised.
func OrderBy(orders []products.SortOrder) string {
	terms := append(Ordering(orders), tieBreaker)
	return "ORDER BY " + strings.Join(terms, ", ")
}
