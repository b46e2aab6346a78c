package aipipeline

import (
	"encoding/base64"
	"net/http"
	"strings"

	"marketplace_backend/platform/ai/provider"
)

const minBase64ImageLen = 64

// DecodeBase64Image treats text made only of base64 characters (optionally
// behind a data URI prefix) as an encoded image. It returns nil when the text
// is prose or decodes to something that is not an image.
func DecodeBase64Image(text string) *provider.Image {
	payload := strings.TrimSpace(text)
	if idx := strings.Index(payload, ";base64,"); strings.HasPrefix(payload, "data:") && idx > 0 {
		payload = payload[idx+len(";base64,"):]
	}
	payload = strings.Join(strings.Fields(payload), "")
	if len(payload) < minBase64ImageLen || !isBase64Alphabet(payload) {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil
		}
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil
	}
	return &provider.Image{MIMEType: mime, Data: data}
}

func isBase64Alphabet(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+', c == '/', c == '=':
		default:
			return false
		}
	}
	return true
}

// ExtensionFor maps an image MIME type to a file extension.
func ExtensionFor(mime string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(mime, ";")[0])) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
