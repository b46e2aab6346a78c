// Package ai wires the configured generative backends into a registry the
// pipeline resolves adapters from by name.
package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"marketplace_backend/platform/ai/gemini"
	"marketplace_backend/platform/ai/openaicompat"
	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/ai/replicate"
	"marketplace_backend/platform/logger"
)

// ProvidersConfig combines the per-backend settings.
type ProvidersConfig interface {
	GetGeminiAPIKey() string
	GetGeminiBackend() string
	GetGeminiProject() string
	GetGeminiLocation() string
	GetGeminiImageModel() string
	GetGeminiTextModel() string
	IsGeminiEnabled() bool

	GetGroqAPIKey() string
	GetGroqBaseURL() string
	GetGroqModel() string
	IsGroqEnabled() bool

	GetMoonshotAPIKey() string
	GetMoonshotBaseURL() string
	GetMoonshotModel() string
	IsMoonshotEnabled() bool

	GetReplicateAPIToken() string
	GetReplicateModel() string
	GetReplicateImageInputKey() string
	IsReplicateEnabled() bool
}

// Registry maps backend names to adapters.
type Registry struct {
	generators map[string]provider.Generator
}

// NewRegistry returns a registry holding the given adapters keyed by Name().
func NewRegistry(gens ...provider.Generator) *Registry {
	r := &Registry{generators: make(map[string]provider.Generator, len(gens))}
	for _, g := range gens {
		r.generators[strings.ToLower(g.Name())] = g
	}
	return r
}

// Build constructs every backend that has credentials configured.
func Build(ctx context.Context, cfg ProvidersConfig, log *logger.Logger) (*Registry, error) {
	var gens []provider.Generator

	if cfg.IsGeminiEnabled() {
		g, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.GetGeminiAPIKey(),
			Backend:    cfg.GetGeminiBackend(),
			Project:    cfg.GetGeminiProject(),
			Location:   cfg.GetGeminiLocation(),
			ImageModel: cfg.GetGeminiImageModel(),
			TextModel:  cfg.GetGeminiTextModel(),
		}, log)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}

	if cfg.IsGroqEnabled() {
		g, err := openaicompat.New(openaicompat.Config{
			Name:    "groq",
			APIKey:  cfg.GetGroqAPIKey(),
			BaseURL: cfg.GetGroqBaseURL(),
			Model:   cfg.GetGroqModel(),
		}, log)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}

	if cfg.IsMoonshotEnabled() {
		g, err := openaicompat.New(openaicompat.Config{
			Name:    "moonshot",
			APIKey:  cfg.GetMoonshotAPIKey(),
			BaseURL: cfg.GetMoonshotBaseURL(),
			Model:   cfg.GetMoonshotModel(),
		}, log)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}

	if cfg.IsReplicateEnabled() {
		g, err := replicate.New(replicate.Config{
			APIToken:      cfg.GetReplicateAPIToken(),
			Model:         cfg.GetReplicateModel(),
			ImageInputKey: cfg.GetReplicateImageInputKey(),
		}, log)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}

	return NewRegistry(gens...), nil
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (provider.Generator, error) {
	g, ok := r.generators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("ai provider %q is not configured (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return g, nil
}

// Names lists registered backends in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
