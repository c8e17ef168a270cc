package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	ListCategories(ctx context.Context) ([]Category, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// productRow is the raw table shape; prices live in minor units.
type productRow struct {
	ID             uuid.UUID
	Name           string
	Description    string
	PriceCents     int64
	SalePriceCents *int64
	Category       string
	ImageURL       string
	Sizes          []string
	Featured       bool
	InStock        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (row productRow) toProduct() Product {
	p := Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       decimal.New(row.PriceCents, -2),
		Category:    row.Category,
		ImageURL:    row.ImageURL,
		Sizes:       row.Sizes,
		Featured:    row.Featured,
		InStock:     row.InStock,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.SalePriceCents != nil {
		sale := decimal.New(*row.SalePriceCents, -2)
		p.SalePrice = &sale
		p.Sale = true
	}
	return p
}

const productColumns = `id, name, description, price_cents, sale_price_cents, category, image_url, sizes, featured, in_stock, created_at, updated_at`

func scanProductRow(row pgx.Row) (Product, error) {
	var r productRow
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.PriceCents,
		&r.SalePriceCents,
		&r.Category,
		&r.ImageURL,
		&r.Sizes,
		&r.Featured,
		&r.InStock,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	return r.toProduct(), nil
}

func (r *postgresRepository) ListProducts(ctx context.Context) ([]Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	p, err := scanProductRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product id: %w", err)
		}
		p.ID = id
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (id, name, description, price_cents, sale_price_cents, category, image_url, sizes, featured, in_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		priceToCents(p.Price),
		salePriceToCents(p.SalePrice),
		p.Category,
		p.ImageURL,
		p.Sizes,
		p.Featured,
		p.InStock,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateProduct(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price_cents = $3, sale_price_cents = $4,
		    category = $5, image_url = $6, sizes = $7, featured = $8, in_stock = $9, updated_at = $10
		WHERE id = $11
	`

	cmdTag, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		priceToCents(p.Price),
		salePriceToCents(p.SalePrice),
		p.Category,
		p.ImageURL,
		p.Sizes,
		p.Featured,
		p.InStock,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *postgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating categories: %w", err)
	}

	return categories, nil
}

func priceToCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.New(100, 0)).Round(0).IntPart()
}

func salePriceToCents(d *decimal.Decimal) *int64 {
	if d == nil {
		return nil
	}
	cents := priceToCents(*d)
	return &cents
}
