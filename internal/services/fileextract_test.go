package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeExtractedText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"windows line endings", "line one\r\nline two", "line one\nline two"},
		{"trims line whitespace", "  padded  \n\ttabbed\t", "padded\ntabbed"},
		{"collapses blank runs", "a\n\n\n\nb", "a\n\nb"},
		{"empty input", "   \n\n  ", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeExtractedText(tc.input); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestStripDOCXML(t *testing.T) {
	src := []byte(`<w:document><w:p><w:r><w:t>First paragraph</w:t></w:r></w:p><w:p><w:r><w:t>Second &amp; third</w:t></w:r></w:p></w:document>`)

	got := normalizeExtractedText(stripDOCXML(src))
	want := "First paragraph\nSecond & third"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestSupportedExtension(t *testing.T) {
	for _, ext := range []string{".txt", ".md", ".pdf", ".docx", ".PDF"} {
		if !SupportedExtension(ext) {
			t.Errorf("Expected %s to be supported", ext)
		}
	}
	for _, ext := range []string{".mp4", ".exe", "", ".doc"} {
		if SupportedExtension(ext) {
			t.Errorf("Expected %s to be unsupported", ext)
		}
	}
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("Cell biology\r\n\r\n\r\nMitochondria produce ATP.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewFileExtractService()
	got, err := svc.ExtractTextFromPath(path)
	if err != nil {
		t.Fatalf("ExtractTextFromPath failed: %v", err)
	}

	want := "Cell biology\n\nMitochondria produce ATP."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestExtractEmptyFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte("   \n  "), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewFileExtractService()
	if _, err := svc.ExtractTextFromPath(path); err == nil {
		t.Error("Expected error for empty file")
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	svc := NewFileExtractService()
	if _, err := svc.ExtractTextFromPath("/tmp/video.mp4"); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}
