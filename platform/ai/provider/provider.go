// Package provider defines the adapter contract every generative backend
// implements. Pipeline stages only see this package, never an SDK.
package provider

import "context"

// Image is an encoded image travelling to or from a provider.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is one generation call: an instruction plus optional image input.
type Request struct {
	// System is an optional system instruction.
	System string
	// Instruction is the natural-language prompt.
	Instruction string
	// Image is an optional input image.
	Image *Image
	// WantImage asks the backend for image output.
	WantImage bool
	// Temperature is left to the backend default when nil.
	Temperature *float32
	// MaxTokens is left to the backend default when zero.
	MaxTokens int
}

// Response holds whatever the provider returned. Either field may be empty.
type Response struct {
	Text   string
	Images []Image
}

// HasImage reports whether at least one non-empty image came back.
func (r *Response) HasImage() bool {
	if r == nil {
		return false
	}
	for _, img := range r.Images {
		if len(img.Data) > 0 {
			return true
		}
	}
	return false
}

// FirstImage returns the first non-empty image, or nil.
func (r *Response) FirstImage() *Image {
	if r == nil {
		return nil
	}
	for i := range r.Images {
		if len(r.Images[i].Data) > 0 {
			return &r.Images[i]
		}
	}
	return nil
}

// Generator is the capability shared by all adapters: generate content
// given a prompt and optional image, return text or image bytes.
type Generator interface {
	// Name identifies the backend in logs.
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Float32 is a helper for Request.Temperature.
func Float32(v float32) *float32 { return &v }

// Missing stands in for a backend selected by configuration but lacking
// credentials. Every call fails permanently so callers degrade per item.
type Missing struct {
	Backend string
}

// Name implements Generator.
func (m Missing) Name() string { return m.Backend }

// Generate implements Generator.
func (m Missing) Generate(context.Context, Request) (*Response, error) {
	return nil, &Error{Provider: m.Backend, Err: ErrNotConfigured}
}
