package aipipeline

import (
	"net/url"
	"strings"
)

// TransformURLBuilder produces the parametric fallback for an image: a CDN
// fetch URL that applies a fixed transformation without any AI call.
type TransformURLBuilder struct {
	cloudName      string
	transformation string
}

// NewTransformURLBuilder returns nil when no cloud name is configured, which
// disables the fallback.
func NewTransformURLBuilder(cloudName, transformation string) *TransformURLBuilder {
	cloudName = strings.TrimSpace(cloudName)
	if cloudName == "" {
		return nil
	}
	if transformation == "" {
		transformation = "e_improve,e_sharpen,b_black"
	}
	return &TransformURLBuilder{cloudName: cloudName, transformation: transformation}
}

// Build returns the transform URL for source. Output is deterministic.
func (b *TransformURLBuilder) Build(source string) (string, bool) {
	if b == nil || source == "" {
		return "", false
	}
	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return "https://res.cloudinary.com/" + url.PathEscape(b.cloudName) +
		"/image/fetch/" + b.transformation + "/" + url.QueryEscape(source), true
}
