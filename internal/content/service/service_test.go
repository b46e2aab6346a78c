package service

import (
	"context"
	"testing"

	"marketplace_backend/internal/aipipeline"
	"marketplace_backend/internal/content/repository"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/inflight"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
)

type memRepo struct {
	docs map[uuid.UUID]repository.Content
}

func (m *memRepo) GetByProductID(_ context.Context, id uuid.UUID) (repository.Content, error) {
	c, ok := m.docs[id]
	if !ok {
		return repository.Content{}, apperr.NotFound("No AI content for that product")
	}
	return c, nil
}

func (m *memRepo) Upsert(_ context.Context, id uuid.UUID, captions aipipeline.CaptionSet, raw string) (repository.Content, error) {
	c := repository.Content{ProductID: id, Captions: captions, RawResponse: raw}
	m.docs[id] = c
	return c, nil
}

type staticProducts struct{ id uuid.UUID }

func (s staticProducts) GetProductContext(_ context.Context, id uuid.UUID) (aipipeline.ProductContext, error) {
	if id != s.id {
		return aipipeline.ProductContext{}, apperr.NotFound("product not found")
	}
	return aipipeline.ProductContext{ID: id.String(), Name: "Brass Diya", Category: "Home Decor", PriceCents: 49900}, nil
}

type fencedGenerator struct{}

func (fencedGenerator) Captions(context.Context, aipipeline.ProductContext) (aipipeline.CaptionResult, error) {
	raw := "```json\n{\"Instagram\": [\"Hi!\"], \"Facebook\": [\"Hello\"]}\n```"
	return aipipeline.CaptionResult{
		Raw:      raw,
		Captions: aipipeline.NormalizeCaptions(map[string]any{"Instagram": []any{"Hi!"}, "Facebook": []any{"Hello"}}),
	}, nil
}

type busy struct{}

func (busy) Acquire(context.Context, string, string) (func(), error) { return nil, inflight.ErrBusy }

func TestGenerateCaptionsStoresRawAndNormalized(t *testing.T) {
	id := uuid.New()
	repo := &memRepo{docs: map[uuid.UUID]repository.Content{}}
	svc := New(repo, staticProducts{id: id}, fencedGenerator{}, nil, logger.New("test"))

	resp, err := svc.GenerateCaptions(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.ProductID != id {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Captions.Instagram) != 1 || resp.Captions.Instagram[0] != "Hi!" || len(resp.Captions.WhatsApp) != 0 {
		t.Fatalf("unexpected captions: %+v", resp.Captions)
	}
	if repo.docs[id].RawResponse == "" {
		t.Fatal("raw response must be retained")
	}
}

func TestGetByProductIDNotFound(t *testing.T) {
	svc := New(&memRepo{docs: map[uuid.UUID]repository.Content{}}, staticProducts{}, fencedGenerator{}, nil, logger.New("test"))

	_, err := svc.GetByProductID(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerateCaptionsRejectsConcurrentRun(t *testing.T) {
	id := uuid.New()
	svc := New(&memRepo{docs: map[uuid.UUID]repository.Content{}}, staticProducts{id: id}, fencedGenerator{}, busy{}, logger.New("test"))

	if _, err := svc.GenerateCaptions(context.Background(), id); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
