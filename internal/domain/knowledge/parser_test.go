package knowledge

import (
	"strings"
	"testing"
)

func TestPlainTextParser(t *testing.T) {
	p := &PlainTextParser{}

	result, err := p.Parse(strings.NewReader("  line one\nline two  \n"), "rice_guide.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Title != "rice guide" {
		t.Errorf("title = %q, want 'rice guide'", result.Title)
	}
	if result.Content != "line one\nline two" {
		t.Errorf("content = %q", result.Content)
	}
}

func TestMarkdownParser(t *testing.T) {
	p := &MarkdownParser{}
	md := `# Wheat Sowing Guide

Sow **wheat** in *November*. See [ICAR](https://icar.org) for details.

## Steps
- Use ` + "`100 kg`" + ` seeds per hectare
`
	result, err := p.Parse(strings.NewReader(md), "wheat.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Title != "Wheat Sowing Guide" {
		t.Errorf("title = %q", result.Title)
	}
	for _, stripped := range []string{"**", "##", "](", "`"} {
		if strings.Contains(result.Content, stripped) {
			t.Errorf("content still contains %q: %q", stripped, result.Content)
		}
	}
	for _, kept := range []string{"wheat", "November", "ICAR", "100 kg"} {
		if !strings.Contains(result.Content, kept) {
			t.Errorf("content lost %q: %q", kept, result.Content)
		}
	}
}

func TestMarkdownTitleFallsBackToFilename(t *testing.T) {
	p := &MarkdownParser{}
	result, err := p.Parse(strings.NewReader("no heading here"), "pest-control-tips.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Title != "pest control tips" {
		t.Errorf("title = %q", result.Title)
	}
}

func TestParserRegistry(t *testing.T) {
	r := NewParserRegistry()

	for _, name := range []string{"a.txt", "b.md", "c.pdf", "d.docx", "E.TXT"} {
		if _, err := r.Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
	}
	if _, err := r.Get("photo.png"); err == nil {
		t.Error("expected error for unsupported type")
	}
	if _, err := r.Get("noext"); err == nil {
		t.Error("expected error for missing extension")
	}
}
