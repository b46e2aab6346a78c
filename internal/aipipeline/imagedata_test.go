package aipipeline

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func pngBytes() []byte {
	header := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	return append(header, bytes.Repeat([]byte{0x42}, 80)...)
}

func TestDecodeBase64Image(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngBytes())

	img := DecodeBase64Image(encoded)
	if img == nil {
		t.Fatal("expected an image")
	}
	if img.MIMEType != "image/png" {
		t.Fatalf("expected image/png, got %s", img.MIMEType)
	}
	if !bytes.Equal(img.Data, pngBytes()) {
		t.Fatal("decoded bytes differ")
	}

	if DecodeBase64Image("data:image/png;base64,"+encoded) == nil {
		t.Fatal("expected data URI to decode")
	}
}

func TestDecodeBase64ImageRejectsProse(t *testing.T) {
	inputs := []string{
		"",
		"I'm sorry, I can't edit images of that kind.",
		base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("plain text "), 10)),
	}
	for _, in := range inputs {
		if img := DecodeBase64Image(in); img != nil {
			t.Fatalf("expected nil for %q, got %s", in, img.MIMEType)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":               ".jpg",
		"image/webp":               ".webp",
		"image/png":                ".png",
		"IMAGE/JPEG; charset=x":    ".jpg",
		"application/octet-stream": ".png",
	}
	for mime, want := range tests {
		if got := ExtensionFor(mime); got != want {
			t.Fatalf("ExtensionFor(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestTransformURLBuilder(t *testing.T) {
	if NewTransformURLBuilder("  ", "") != nil {
		t.Fatal("blank cloud name should disable the builder")
	}
	var disabled *TransformURLBuilder
	if _, ok := disabled.Build("https://cdn.example.com/a.jpg"); ok {
		t.Fatal("nil builder must not build")
	}

	b := NewTransformURLBuilder("demo", "")
	got, ok := b.Build("https://cdn.example.com/a.jpg")
	if !ok {
		t.Fatal("expected a transform URL")
	}
	want := "https://res.cloudinary.com/demo/image/fetch/e_improve,e_sharpen,b_black/https%3A%2F%2Fcdn.example.com%2Fa.jpg"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if again, _ := b.Build("https://cdn.example.com/a.jpg"); again != got {
		t.Fatal("output must be deterministic")
	}
	if _, ok := b.Build("ftp://cdn.example.com/a.jpg"); ok {
		t.Fatal("non-http sources are rejected")
	}
}
