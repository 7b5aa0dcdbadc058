package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must be >= 0")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("QUIRE_TEST_NAME", "from-env")
	path := writeConfig(t, "name: ${QUIRE_TEST_NAME}\n")

	s := &sample{Count: 7}
	if err := Load(path, s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.Count != 7 {
		t.Errorf("Count = %d, default should survive", s.Count)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeConfig(t, "count: -1\n")
	err := Load(path, &sample{})
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "count: [unterminated\n")
	if err := Load(path, &sample{}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOptional_MissingFile(t *testing.T) {
	s := &sample{Name: "default"}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if found || s.Name != "default" {
		t.Errorf("found = %v, name = %q", found, s.Name)
	}
}

func TestLoadOptional_StillValidates(t *testing.T) {
	if _, err := LoadOptional("", &sample{Count: -5}); err == nil {
		t.Fatal("defaults should still be validated")
	}
}

func TestLoadOptional_ReadsExistingFile(t *testing.T) {
	path := writeConfig(t, "name: file\n")
	s := &sample{}
	found, err := LoadOptional(path, s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if !found || s.Name != "file" {
		t.Errorf("found = %v, name = %q", found, s.Name)
	}
}
