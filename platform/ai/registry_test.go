package ai

import (
	"context"
	"reflect"
	"testing"

	"marketplace_backend/platform/ai/provider"
)

type namedGenerator string

func (n namedGenerator) Name() string { return string(n) }

func (n namedGenerator) Generate(context.Context, provider.Request) (*provider.Response, error) {
	return &provider.Response{Text: string(n)}, nil
}

func TestRegistryLookupIgnoresCase(t *testing.T) {
	r := NewRegistry(namedGenerator("Gemini"), namedGenerator("groq"))

	g, err := r.Get("GEMINI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Name() != "Gemini" {
		t.Fatalf("resolved %s", g.Name())
	}
	if want := []string{"gemini", "groq"}; !reflect.DeepEqual(r.Names(), want) {
		t.Fatalf("names = %v, want %v", r.Names(), want)
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	if _, err := NewRegistry().Get("replicate"); err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}
