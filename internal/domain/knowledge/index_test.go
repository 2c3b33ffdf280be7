package knowledge

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIndexSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	idx := testIndex()
	idx.BuiltAt = time.Now().UTC()
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if loaded.Size() != idx.Size() {
		t.Fatalf("size = %d, want %d", loaded.Size(), idx.Size())
	}
	if loaded.Documents[2].Title != "Pest Control" {
		t.Fatalf("document order not preserved: %v", loaded.Documents)
	}
	if len(loaded.Vectors[0]) != 2 {
		t.Fatalf("vector dims = %d, want 2", len(loaded.Vectors[0]))
	}
}

func TestLoadIndexMissingFile(t *testing.T) {
	if _, err := LoadIndex(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadIndexCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadIndex(path); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestIndexValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Index)
	}{
		{name: "no documents", mutate: func(i *Index) { i.Documents = nil; i.Vectors = nil }},
		{name: "count mismatch", mutate: func(i *Index) { i.Vectors = i.Vectors[:2] }},
		{name: "empty vector", mutate: func(i *Index) { i.Vectors[1] = nil }},
		{name: "dims mismatch", mutate: func(i *Index) { i.Vectors[1] = []float32{1, 2, 3} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx := testIndex()
			tc.mutate(idx)
			if err := idx.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
