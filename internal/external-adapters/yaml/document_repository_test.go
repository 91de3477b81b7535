package yaml

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDocumentRepository_ListDocuments(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"b.json":    `{"type": "attestation"}`,
		"a.yaml":    "type: attestation\n",
		"c.yml":     "type: attestation\n",
		"notes.txt": "ignored",
		"README.md": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0600); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "nested.json"), 0700); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	repo := NewDocumentRepository(tmpDir)
	paths, err := repo.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}

	want := []string{
		filepath.Join(tmpDir, "a.yaml"),
		filepath.Join(tmpDir, "b.json"),
		filepath.Join(tmpDir, "c.yml"),
	}
	if len(paths) != len(want) {
		t.Fatalf("ListDocuments() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %v, want %v", i, paths[i], want[i])
		}
	}
}

func TestDocumentRepository_ListDocuments_MissingDir(t *testing.T) {
	repo := NewDocumentRepository(filepath.Join(t.TempDir(), "absent"))
	if _, err := repo.ListDocuments(context.Background()); err == nil {
		t.Error("ListDocuments() should return error for missing directory")
	}
}

func TestDocumentRepository_ReadDocument_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "doc.yaml")
	content := []byte(`type: attestation
claims:
  - predicate: contains
    object:
      purl: pkg:npm/a@1.0.0
    confidence: 0.5
`)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	data, err := NewDocumentRepository(tmpDir).ReadDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}

	var doc struct {
		Type   string `json:"type"`
		Claims []struct {
			Predicate string `json:"predicate"`
			Object    struct {
				Purl string `json:"purl"`
			} `json:"object"`
			Confidence float64 `json:"confidence"`
		} `json:"claims"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("converted document is not JSON: %v", err)
	}
	if doc.Type != "attestation" {
		t.Errorf("Type = %v, want attestation", doc.Type)
	}
	if len(doc.Claims) != 1 || doc.Claims[0].Object.Purl != "pkg:npm/a@1.0.0" || doc.Claims[0].Confidence != 0.5 {
		t.Errorf("Claims = %+v, want one contains claim on pkg:npm/a@1.0.0", doc.Claims)
	}
}

func TestDocumentRepository_ReadDocument_JSONPassthrough(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "broken.json")
	if err := os.WriteFile(path, []byte(`{"type": `), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	data, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatalf("ReadDocumentFile() error = %v", err)
	}
	if string(data) != `{"type": ` {
		t.Errorf("ReadDocumentFile() = %q, want raw bytes", data)
	}
}

func TestYAMLToJSON_Invalid(t *testing.T) {
	if _, err := YAMLToJSON([]byte("a: [1, 2\n")); err == nil {
		t.Error("YAMLToJSON() should return error for malformed YAML")
	}
}
