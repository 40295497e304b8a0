package storage

import "testing"

func TestValidateKey(t *testing.T) {
	cases := map[string]bool{
		"text/123456789.txt":   true,
		"123456789.txt":        true,
		"":                     false,
		"/text/123456789.txt":  false,
		"text/../secret.txt":   false,
		"text//123456789.txt":  false,
		"text/./123456789.txt": false,
	}
	for key, ok := range cases {
		if err := ValidateKey(key); (err == nil) != ok {
			t.Errorf("ValidateKey(%q) = %v, want valid=%v", key, err, ok)
		}
	}
}

func TestValidateContentTypeAndSize(t *testing.T) {
	s := &MinIOService{maxFileSize: 10}

	if err := s.ValidateContentType("text/plain; charset=utf-8"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.ValidateContentType("image/png"); err == nil {
		t.Fatal("expected images to be rejected")
	}
	if err := s.ValidateFileSize(0); err == nil {
		t.Fatal("expected empty body to be rejected")
	}
	if err := s.ValidateFileSize(11); err == nil {
		t.Fatal("expected oversized body to be rejected")
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := ContentTypeFor([]byte("  <!DOCTYPE html><html>")); got != "text/html; charset=utf-8" {
		t.Fatalf("expected html, got %q", got)
	}
	if got := ContentTypeFor([]byte("DESCRIPCION: x")); got != "text/plain; charset=utf-8" {
		t.Fatalf("expected plain text, got %q", got)
	}
}
