package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"tilde only", "~", home},
		{"tilde slash", "~/vectors/glove.bin", filepath.Join(home, "vectors", "glove.bin")},
		{"absolute", "/tmp/v.bin", "/tmp/v.bin"},
		{"relative", "data/v.bin", "data/v.bin"},
		{"tilde user", "~bob/v.bin", "~bob/v.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q): %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadDefaultWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vectors.Format != "bin" || cfg.Search.TopK != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.HasBackoff() {
		t.Error("default config should have no backoff")
	}
}

func TestLoadYAML(t *testing.T) {
	home, _ := os.UserHomeDir()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `vectors:
  path: ~/vectors/phrases.txt
  format: text
  normalize: nfc
backoff:
  path: /data/words.db
search:
  workers: 4
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vectors.Path != filepath.Join(home, "vectors", "phrases.txt") {
		t.Errorf("Vectors.Path = %q", cfg.Vectors.Path)
	}
	if cfg.Vectors.Format != "text" || cfg.Vectors.Normalize != "nfc" {
		t.Errorf("Vectors = %+v", cfg.Vectors)
	}
	if cfg.Vectors.Precision != "auto" {
		t.Errorf("Precision default lost: %q", cfg.Vectors.Precision)
	}
	if !cfg.HasBackoff() || cfg.Backoff.Format != "bin" {
		t.Errorf("Backoff = %+v", cfg.Backoff)
	}
	if cfg.Search.Workers != 4 || cfg.Search.TopK != 10 {
		t.Errorf("Search = %+v", cfg.Search)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("vectors: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Vectors.Path = "/data/v.bin"
	cfg.Search.TopK = 3
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Vectors.Path != "/data/v.bin" || got.Search.TopK != 3 {
		t.Errorf("round trip = %+v", got)
	}
}
