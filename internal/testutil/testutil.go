// Package testutil provides shared test helpers for manuscript and book
// directories and manifest databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/quire/internal/manifest"
	"github.com/starford/quire/internal/storage"
)

// Dirs is a temporary project laid out like a real one.
type Dirs struct {
	Root       string
	Manuscript string
	Book       string
	Template   string
}

// TestDirs creates manuscript/en, book/en and template/ under a temp root.
func TestDirs(t *testing.T) Dirs {
	t.Helper()
	root := t.TempDir()
	d := Dirs{
		Root:       root,
		Manuscript: filepath.Join(root, "manuscript", "en"),
		Book:       filepath.Join(root, "book", "en"),
		Template:   filepath.Join(root, "template", "template.html"),
	}
	for _, dir := range []string{d.Manuscript, d.Book, filepath.Dir(d.Template)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

// WriteFile writes content to dir/name, failing the test on error.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile returns the content of dir/name, failing the test on error.
func ReadFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// TestStores opens storage providers over the manuscript and book dirs.
func TestStores(t *testing.T, d Dirs) (storage.Provider, storage.Provider) {
	t.Helper()
	src, err := storage.NewFS(d.Manuscript)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := storage.NewFS(d.Book)
	if err != nil {
		t.Fatal(err)
	}
	return src, dst
}

// TestManifest creates a temporary manifest database that is automatically
// cleaned up.
func TestManifest(t *testing.T) *manifest.DB {
	t.Helper()
	db, err := manifest.Open(filepath.Join(t.TempDir(), "quire-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
