package util

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("Scan Final.PNG")
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("expected lowercased extension, got %s", key)
	}
	if _, err := uuid.Parse(strings.TrimSuffix(key, ".png")); err != nil {
		t.Fatalf("expected uuid prefix: %v", err)
	}
	if ObjectKey("a.pdf") == ObjectKey("a.pdf") {
		t.Fatalf("expected distinct keys")
	}
	if k := ObjectKey("noext"); strings.Contains(k, ".") {
		t.Fatalf("unexpected extension in %s", k)
	}
}

func TestPDFName(t *testing.T) {
	tests := map[string]string{
		"abc.jpg":  "abc.pdf",
		"abc.JPEG": "abc.pdf",
		"abc.png":  "abc.pdf",
		"abc.pdf":  "abc.pdf",
		"abc":      "abc",
	}
	for in, want := range tests {
		if got := PDFName(in); got != want {
			t.Fatalf("PDFName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAttachmentName(t *testing.T) {
	tests := map[string]string{
		" dir/scan\\1.png ": "dir_scan_1.png",
		"re\"port\n.pdf":     "report.pdf",
		"":                   "document",
		"  ":                 "document",
		"../etc/passwd":      "document",
		"\"\"":               "document",
	}
	for in, want := range tests {
		if got := AttachmentName(in, "document"); got != want {
			t.Fatalf("AttachmentName(%q) = %q, want %q", in, got, want)
		}
	}
}
