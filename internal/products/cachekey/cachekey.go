// Package cachekey derives the cache namespaces and keys used by the product
// service.
package cachekey

import (
	"strconv"
	"strings"

	"product-catalog/internal/products"
)

const (
	EntityNamespace = "productCache"
	SearchNamespace = "productSearchCache"
)

// Entity returns the entity cache key for a product id.
func Entity(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Search returns the search cache key for a criteria set and a page request.
// Fields are written in a fixed order and absent fields contribute nothing.
// String values are quoted so a value can never be mistaken for a field tag.
func Search(c products.Criteria, page products.PageRequest) string {
	var b strings.Builder

	if c.Name != nil {
		b.WriteString("name_")
		b.WriteString(strconv.Quote(*c.Name))
	}
	if c.Description != nil {
		b.WriteString("desc_")
		b.WriteString(strconv.Quote(*c.Description))
	}
	writeInt(&b, "minPrice_", c.MinPrice)
	writeInt(&b, "maxPrice_", c.MaxPrice)
	writeInt(&b, "minQuantity_", c.MinQuantity)
	writeInt(&b, "maxQuantity_", c.MaxQuantity)

	b.WriteString("pageNum")
	b.WriteString(strconv.Itoa(page.Page))
	b.WriteString("pageSize")
	b.WriteString(strconv.Itoa(page.Size))

	if len(page.Sort) > 0 {
		b.WriteString("sort_")
		for i, o := range page.Sort {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(string(o.Field)))
			b.WriteByte(':')
			b.WriteString(string(o.Direction))
		}
	}

	return b.String()
}

func writeInt(b *strings.Builder, tag string, v *int64) {
	if v == nil {
		return
	}
	b.WriteString(tag)
	b.WriteString(strconv.FormatInt(*v, 10))
}
