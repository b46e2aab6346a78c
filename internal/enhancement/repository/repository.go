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

const enhancementNotFoundMessage = "no AI enhancement for that product"

// Repo implements the enhancement repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new enhancement repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const selectColumns = `
	product_id, enhanced_images, suggestions_box, suggested_titles, suggested_descriptions,
	suggested_tags, suggested_prices, raw_suggestions_text, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnhancement(row rowScanner) (Enhancement, error) {
	var e Enhancement
	var imagesJSON, boxJSON []byte
	if err := row.Scan(
		&e.ProductID, &imagesJSON, &boxJSON, &e.SuggestedTitles, &e.SuggestedDescriptions,
		&e.SuggestedTags, &e.SuggestedPrices, &e.RawSuggestionsText, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return Enhancement{}, err
	}
	if err := json.Unmarshal(imagesJSON, &e.EnhancedImages); err != nil {
		return Enhancement{}, fmt.Errorf("decode enhanced images: %w", err)
	}
	if err := json.Unmarshal(boxJSON, &e.SuggestionsBox); err != nil {
		return Enhancement{}, fmt.Errorf("decode suggestions box: %w", err)
	}
	e.fillEmpty()
	return e, nil
}

// fillEmpty keeps JSON output free of nulls.
func (e *Enhancement) fillEmpty() {
	if e.EnhancedImages == nil {
		e.EnhancedImages = []aipipeline.EnhancedImagePair{}
	}
	if e.SuggestionsBox == nil {
		e.SuggestionsBox = map[string][]string{}
	}
	if e.SuggestedTitles == nil {
		e.SuggestedTitles = []string{}
	}
	if e.SuggestedDescriptions == nil {
		e.SuggestedDescriptions = []string{}
	}
	if e.SuggestedTags == nil {
		e.SuggestedTags = []string{}
	}
	if e.SuggestedPrices == nil {
		e.SuggestedPrices = []float64{}
	}
}

// GetByProductID retrieves the enhancement document for a product.
func (r *Repo) GetByProductID(ctx context.Context, productID uuid.UUID) (Enhancement, error) {
	query := `SELECT ` + selectColumns + ` FROM ai_enhancements WHERE product_id = $1`

	e, err := scanEnhancement(r.pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Enhancement{}, apperr.NotFound(enhancementNotFoundMessage)
		}
		return Enhancement{}, fmt.Errorf("get enhancement: %w", err)
	}
	return e, nil
}

// GetByProductIDs retrieves documents for several products. Missing ones are absent from the map.
func (r *Repo) GetByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]Enhancement, error) {
	out := make(map[uuid.UUID]Enhancement, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	query := `SELECT ` + selectColumns + ` FROM ai_enhancements WHERE product_id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list enhancements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEnhancement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enhancement: %w", err)
		}
		out[e.ProductID] = e
	}
	return out, rows.Err()
}

// UpdateEnhancedImages serializes writers of the same product with a
// transaction-scoped advisory lock, then applies merge to the stored pairs.
func (r *Repo) UpdateEnhancedImages(ctx context.Context, productID uuid.UUID, merge MergeFunc) (Enhancement, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Enhancement{}, fmt.Errorf("begin update enhanced images: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "ai_enhancements:"+productID.String()); err != nil {
		return Enhancement{}, fmt.Errorf("lock enhancement: %w", err)
	}

	var existing []aipipeline.EnhancedImagePair
	var imagesJSON []byte
	err = tx.QueryRow(ctx, `SELECT enhanced_images FROM ai_enhancements WHERE product_id = $1 FOR UPDATE`, productID).Scan(&imagesJSON)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return Enhancement{}, fmt.Errorf("read enhanced images: %w", err)
	default:
		if err := json.Unmarshal(imagesJSON, &existing); err != nil {
			return Enhancement{}, fmt.Errorf("decode enhanced images: %w", err)
		}
	}

	merged, err := json.Marshal(merge(existing))
	if err != nil {
		return Enhancement{}, fmt.Errorf("encode enhanced images: %w", err)
	}

	query := `
		INSERT INTO ai_enhancements (product_id, enhanced_images)
		VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE
		SET enhanced_images = EXCLUDED.enhanced_images,
			updated_at = now()
		RETURNING ` + selectColumns

	e, err := scanEnhancement(tx.QueryRow(ctx, query, productID, merged))
	if err != nil {
		return Enhancement{}, fmt.Errorf("store enhanced images: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Enhancement{}, fmt.Errorf("commit enhanced images: %w", err)
	}
	return e, nil
}

// SaveSuggestions upserts the structured suggestions and the raw provider text.
func (r *Repo) SaveSuggestions(ctx context.Context, productID uuid.UUID, raw string, doc aipipeline.SuggestionDocument) (Enhancement, error) {
	box, err := json.Marshal(doc.SuggestionsBox)
	if err != nil {
		return Enhancement{}, fmt.Errorf("encode suggestions box: %w", err)
	}

	query := `
		INSERT INTO ai_enhancements (
			product_id, suggestions_box, suggested_titles, suggested_descriptions,
			suggested_tags, suggested_prices, raw_suggestions_text
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id) DO UPDATE
		SET suggestions_box = EXCLUDED.suggestions_box,
			suggested_titles = EXCLUDED.suggested_titles,
			suggested_descriptions = EXCLUDED.suggested_descriptions,
			suggested_tags = EXCLUDED.suggested_tags,
			suggested_prices = EXCLUDED.suggested_prices,
			raw_suggestions_text = EXCLUDED.raw_suggestions_text,
			updated_at = now()
		RETURNING ` + selectColumns

	e, err := scanEnhancement(r.pool.QueryRow(ctx, query,
		productID, box, doc.SuggestedTitles, doc.SuggestedDescriptions,
		doc.SuggestedTags, doc.SuggestedPrices, raw,
	))
	if err != nil {
		return Enhancement{}, fmt.Errorf("save suggestions: %w", err)
	}
	return e, nil
}

// ListRawSuggestions returns stored raw suggestion texts, oldest update first.
// A non-positive limit returns every row.
func (r *Repo) ListRawSuggestions(ctx context.Context, limit int) ([]RawSuggestions, error) {
	query := `
		SELECT product_id, raw_suggestions_text
		FROM ai_enhancements
		WHERE raw_suggestions_text <> ''
		ORDER BY updated_at, product_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list raw suggestions: %w", err)
	}
	defer rows.Close()

	out := make([]RawSuggestions, 0)
	for rows.Next() {
		var item RawSuggestions
		if err := rows.Scan(&item.ProductID, &item.Raw); err != nil {
			return nil, fmt.Errorf("scan raw suggestions: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// UpdateSuggestionDocument rewrites the structured fields and leaves the raw text untouched.
func (r *Repo) UpdateSuggestionDocument(ctx context.Context, productID uuid.UUID, doc aipipeline.SuggestionDocument) error {
	box, err := json.Marshal(doc.SuggestionsBox)
	if err != nil {
		return fmt.Errorf("encode suggestions box: %w", err)
	}

	query := `
		UPDATE ai_enhancements
		SET suggestions_box = $2,
			suggested_titles = $3,
			suggested_descriptions = $4,
			suggested_tags = $5,
			suggested_prices = $6,
			updated_at = now()
		WHERE product_id = $1`

	result, err := r.pool.Exec(ctx, query, productID, box, doc.SuggestedTitles, doc.SuggestedDescriptions, doc.SuggestedTags, doc.SuggestedPrices)
	if err != nil {
		return fmt.Errorf("update suggestion document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(enhancementNotFoundMessage)
	}
	return nil
}
