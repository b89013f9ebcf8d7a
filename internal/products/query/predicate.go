// Package query turns search criteria and sort requests into SQL fragments
// for the products table.
package query

import (
	"fmt"
	"strings"

	"product-catalog/internal/products"
)

const liveCondition = "deleted_at IS NULL"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Predicate is a conjunction of SQL conditions with positional arguments.
// Placeholders are numbered from $1 in the order the arguments appear.
type Predicate struct {
	conditions []string
	args       []any
}

// Compose builds the predicate for c. Every absent criterion is left out of
// the conjunction; the live-row condition is always present.
func Compose(c products.Criteria) Predicate {
	var p Predicate
	p.conditions = append(p.conditions, liveCondition)

	if c.Name != nil {
		p.contains("name", *c.Name)
	}
	if c.Description != nil {
		p.contains("description", *c.Description)
	}
	p.between("supply_price", c.MinPrice, c.MaxPrice)
	p.between("quantity", c.MinQuantity, c.MaxQuantity)

	return p
}

// Where renders the conjunction, including the WHERE keyword.
func (p Predicate) Where() string {
	return "WHERE " + strings.Join(p.conditions, " AND ")
}

// Args returns a copy of the positional arguments.
func (p Predicate) Args() []any {
	out := make([]any, len(p.args))
	copy(out, p.args)
	return out
}

// Conditions returns the number of conditions, the live-row filter included.
func (p Predicate) Conditions() int {
	return len(p.conditions)
}

func (p *Predicate) contains(column, value string) {
	arg := p.bind("%" + likeEscaper.Replace(value) + "%")
	p.conditions = append(p.conditions, fmt.Sprintf("%s ILIKE %s", column, arg))
}

func (p *Predicate) between(column string, lower, upper *int64) {
	switch {
	case lower != nil && upper != nil:
		lo := p.bind(*lower)
		hi := p.bind(*upper)
		p.conditions = append(p.conditions, fmt.Sprintf("%s BETWEEN %s AND %s", column, lo, hi))
	case lower != nil:
		p.conditions = append(p.conditions, fmt.Sprintf("%s >= %s", column, p.bind(*lower)))
	case upper != nil:
		p.conditions = append(p.conditions, fmt.Sprintf("%s <= %s", column, p.bind(*upper)))
	}
}

func (p *Predicate) bind(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}
