package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/products"
	"product-catalog/internal/products/query"

	"github.com/jmoiron/sqlx"
)

const (
	healthCheckTimeout = 2 * time.Second

	productColumns = `id, name, description, supply_price, quantity,
		created_at, created_by, updated_at, updated_by, deleted_at, deleted_by`
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, req products.Request, actor string) (products.Product, error) {
	q := `
		INSERT INTO products (name, description, supply_price, quantity, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns

	var p products.Product
	if err := r.db.GetContext(ctx, &p, q,
		req.Name, req.Description, req.SupplyPrice, req.Quantity, nullable(actor),
	); err != nil {
		return products.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// FindByID returns the live product with the given id.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (products.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`

	var p products.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("select product %d: %w", id, err)
	}
	return p, nil
}

type searchRow struct {
	products.Product
	Total int64 `db:"total_count"`
}

// Search returns one page of live products matching c and the total number
// of matches. The window count reads the same snapshot as the page.
func (r *PostgresRepository) Search(ctx context.Context, c products.Criteria, page products.PageRequest) ([]products.Product, int64, error) {
	pred := query.Compose(c)
	args := pred.Args()
	limitArg := len(args) + 1
	args = append(args, page.Size, page.Offset())

	q := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM products
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		productColumns, pred.Where(), query.OrderBy(page.Sort), limitArg, limitArg+1)

	var rows []searchRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}

	list := make([]products.Product, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.Product)
	}

	if len(rows) > 0 {
		return list, rows[0].Total, nil
	}
	if page.Offset() == 0 {
		return list, 0, nil
	}

	// Past the last page no row carries the window count.
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products `+pred.Where(), pred.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	return list, total, nil
}

// Update overwrites the mutable fields of a live product.
func (r *PostgresRepository) Update(ctx context.Context, id int64, req products.Request, actor string) (products.Product, error) {
	q := `
		UPDATE products
		SET name = $2, description = $3, supply_price = $4, quantity = $5,
		    updated_by = $6, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + productColumns

	var p products.Product
	if err := r.db.GetContext(ctx, &p, q,
		id, req.Name, req.Description, req.SupplyPrice, req.Quantity, nullable(actor),
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

// SoftDelete marks a live product as deleted. The row is kept.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64, actor string) error {
	q := `
		UPDATE products
		SET deleted_at = NOW(), deleted_by = $2
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, q, id, nullable(actor))
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return products.ErrNotFound
	}

	return nil
}

// ReduceQuantity decrements the stock of a live product and returns the
// remaining quantity. The guard on quantity makes the decrement fail rather
// than go negative when stock ran out since the caller last read it.
func (r *PostgresRepository) ReduceQuantity(ctx context.Context, id int64, amount int64) (int64, error) {
	q := `
		UPDATE products
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND quantity >= $2
		RETURNING quantity`

	var remaining int64
	if err := r.db.GetContext(ctx, &remaining, q, id, amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, r.reduceFailure(ctx, id)
		}
		return 0, fmt.Errorf("reduce quantity of product %d: %w", id, err)
	}
	return remaining, nil
}

func (r *PostgresRepository) reduceFailure(ctx context.Context, id int64) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return products.ErrInsufficientQuantity
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
