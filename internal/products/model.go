package products

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound             = errors.New("product not found")
	ErrInsufficientQuantity = errors.New("not enough quantity for product")
	ErrInvalidInput         = errors.New("invalid product input")
)

const (
	EventsQueue          = "products.events"
	EventCreated         = "product_created"
	EventUpdated         = "product_updated"
	EventDeleted         = "product_deleted"
	EventQuantityReduced = "product_quantity_reduced"
)

// Product is a row of the products table. DeletedAt marks a soft-deleted record.
type Product struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	SupplyPrice int64      `db:"supply_price"`
	Quantity    int64      `db:"quantity"`
	CreatedAt   time.Time  `db:"created_at"`
	CreatedBy   *string    `db:"created_by"`
	UpdatedAt   *time.Time `db:"updated_at"`
	UpdatedBy   *string    `db:"updated_by"`
	DeletedAt   *time.Time `db:"deleted_at"`
	DeletedBy   *string    `db:"deleted_by"`
}

// Response is the outward projection of a Product. Deletion audit fields are
// never exposed.
type Response struct {
	ID          int64      `json:"id" example:"1"`
	Name        string     `json:"name" example:"Widget"`
	Description string     `json:"description" example:"blue widget"`
	SupplyPrice int64      `json:"supply_price" example:"100"`
	Quantity    int64      `json:"quantity" example:"10"`
	CreatedAt   time.Time  `json:"created_at" example:"2026-02-24T12:00:00Z"`
	CreatedBy   *string    `json:"created_by" example:"u1"`
	UpdatedAt   *time.Time `json:"updated_at"`
	UpdatedBy   *string    `json:"updated_by"`
}

func (p Product) Response() Response {
	return Response{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		SupplyPrice: p.SupplyPrice,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt,
		CreatedBy:   p.CreatedBy,
		UpdatedAt:   p.UpdatedAt,
		UpdatedBy:   p.UpdatedBy,
	}
}

// Request carries the mutable fields of a product on create and update.
type Request struct {
	Name        string `json:"name" example:"Widget"`
	Description string `json:"description" example:"blue widget"`
	SupplyPrice int64  `json:"supply_price" example:"100"`
	Quantity    int64  `json:"quantity" example:"10"`
}

// Criteria holds the optional search filters. A nil field is absent and
// contributes no condition.
type Criteria struct {
	Name        *string
	Description *string
	MinPrice    *int64
	MaxPrice    *int64
	MinQuantity *int64
	MaxQuantity *int64
}

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortPrice     SortField = "price"
	SortQuantity  SortField = "quantity"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

type SortOrder struct {
	Field     SortField
	Direction SortDirection
}

// PageRequest is a zero-based page index with a page size and optional ordering.
type PageRequest struct {
	Page int
	Size int
	Sort []SortOrder
}

// Offset is the number of rows before the page. It saturates at math.MaxInt
// instead of overflowing.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Page is one page of search results plus the total number of matches.
type Page struct {
	Items []Response `json:"items"`
	Page  int        `json:"page" example:"0"`
	Size  int        `json:"size" example:"10"`
	Total int64      `json:"total" example:"42"`
}

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Quantity  *int64    `json:"quantity,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
