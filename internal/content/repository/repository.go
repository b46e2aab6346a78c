package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"marketplace_backend/internal/aipipeline"
	"marketplace_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contentNotFoundMessage = "No AI content for that product"

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new content repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// GetByProductID retrieves the caption document for a product.
func (r *Repo) GetByProductID(ctx context.Context, productID uuid.UUID) (Content, error) {
	query := `
		SELECT product_id, captions, raw_response, created_at, updated_at
		FROM ai_contents
		WHERE product_id = $1`

	c, err := scanContent(r.pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Content{}, apperr.NotFound(contentNotFoundMessage)
		}
		return Content{}, fmt.Errorf("get ai content: %w", err)
	}
	return c, nil
}

// Upsert replaces the caption document for a product.
func (r *Repo) Upsert(ctx context.Context, productID uuid.UUID, captions aipipeline.CaptionSet, raw string) (Content, error) {
	data, err := json.Marshal(captions)
	if err != nil {
		return Content{}, fmt.Errorf("encode captions: %w", err)
	}

	query := `
		INSERT INTO ai_contents (product_id, captions, raw_response)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO UPDATE
		SET captions = EXCLUDED.captions,
			raw_response = EXCLUDED.raw_response,
			updated_at = now()
		RETURNING product_id, captions, raw_response, created_at, updated_at`

	c, err := scanContent(r.pool.QueryRow(ctx, query, productID, data, raw))
	if err != nil {
		return Content{}, fmt.Errorf("upsert ai content: %w", err)
	}
	return c, nil
}

func scanContent(row pgx.Row) (Content, error) {
	var c Content
	var captionsJSON []byte
	if err := row.Scan(&c.ProductID, &captionsJSON, &c.RawResponse, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Content{}, err
	}
	if err := json.Unmarshal(captionsJSON, &c.Captions); err != nil {
		return Content{}, fmt.Errorf("decode captions: %w", err)
	}
	for _, list := range []*[]string{&c.Captions.Instagram, &c.Captions.Facebook, &c.Captions.WhatsApp} {
		if *list == nil {
			*list = []string{}
		}
	}
	return c, nil
}
