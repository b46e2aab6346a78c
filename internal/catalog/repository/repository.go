package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productNotFoundMessage = "product not found"

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateProduct inserts a product and its images in one transaction.
func (r *Repo) CreateProduct(ctx context.Context, params CreateProductParams) (Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Product{}, fmt.Errorf("begin create product: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO products (name, description, price_cents, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, price_cents, category, created_at, updated_at`

	var p Product
	if err := tx.QueryRow(ctx, query, params.Name, params.Description, params.PriceCents, params.Category).Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}

	batch := &pgx.Batch{}
	for i, img := range params.Images {
		batch.Queue(`
			INSERT INTO product_images (product_id, position, url, file_key, content_type, size_bytes)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, i, img.URL, img.FileKey, img.ContentType, img.SizeBytes)
		img.Position = i
		p.Images = append(p.Images, img)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return Product{}, fmt.Errorf("create product images: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Product{}, fmt.Errorf("commit create product: %w", err)
	}
	return p, nil
}

// GetProductByID retrieves a product with its images.
func (r *Repo) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	query := `
		SELECT id, name, description, price_cents, category, created_at, updated_at
		FROM products
		WHERE id = $1`

	var p Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, apperr.NotFound(productNotFoundMessage)
		}
		return Product{}, fmt.Errorf("get product by id: %w", err)
	}

	images, err := r.imagesFor(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return Product{}, err
	}
	p.Images = images[p.ID]
	return p, nil
}

// GetProductsByIDs retrieves products by IDs. Unknown IDs are omitted.
func (r *Repo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, description, price_cents, category, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	return products, r.attachImages(ctx, products)
}

// ListProducts lists products newest first.
func (r *Repo) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE ($1 = '' OR category ILIKE $1)`, params.Category,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `
		SELECT id, name, description, price_cents, category, created_at, updated_at
		FROM products
		WHERE ($1 = '' OR category ILIKE $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, params.Category, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if err := r.attachImages(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repo) attachImages(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	images, err := r.imagesFor(ctx, ids)
	if err != nil {
		return err
	}
	for i := range products {
		products[i].Images = images[products[i].ID]
	}
	return nil
}

func (r *Repo) imagesFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]Image, error) {
	query := `
		SELECT product_id, position, url, COALESCE(file_key, ''), COALESCE(content_type, ''), COALESCE(size_bytes, 0)
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY product_id, position`

	rows, err := r.pool.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]Image, len(productIDs))
	for rows.Next() {
		var productID uuid.UUID
		var img Image
		if err := rows.Scan(&productID, &img.Position, &img.URL, &img.FileKey, &img.ContentType, &img.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		out[productID] = append(out[productID], img)
	}
	return out, rows.Err()
}
