package storage

import "testing"

func TestValidateContentTypeAcceptsImagesOnly(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "IMAGE/PNG", "image/webp; charset=binary"} {
		if err := ValidateContentType(ct); err != nil {
			t.Errorf("expected %q to be accepted, got %v", ct, err)
		}
	}
	for _, ct := range []string{"application/pdf", "text/plain", ""} {
		if err := ValidateContentType(ct); err == nil {
			t.Errorf("expected %q to be rejected", ct)
		}
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(0, 100); err == nil {
		t.Fatal("expected zero size to be rejected")
	}
	if err := ValidateFileSize(101, 100); err == nil {
		t.Fatal("expected oversized file to be rejected")
	}
	if err := ValidateFileSize(100, 100); err != nil {
		t.Fatalf("expected size at limit to pass, got %v", err)
	}
	if err := ValidateFileSize(1<<30, 0); err != nil {
		t.Fatalf("expected unbounded max to pass, got %v", err)
	}
}
