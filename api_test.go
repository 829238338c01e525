package wordvec

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/headlands-org/go-wordvec/internal/vecfile"
	"github.com/headlands-org/go-wordvec/pkg/embeddings"
)

func royalty() []Entry {
	return []Entry{
		{Term: "man", Vector: []float32{1, 0, 0}},
		{Term: "king", Vector: []float32{1, 1, 0}},
		{Term: "woman", Vector: []float32{0, 0, 1}},
		{Term: "queen", Vector: []float32{0, 1, 1}},
		{Term: "apple", Vector: []float32{-1, 0, 0}},
	}
}

func TestOpenAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "royalty.txt")
	if err := vecfile.WriteFile(path, FormatText, royalty()); err != nil {
		t.Fatal(err)
	}
	m, err := Open(path, FormatText)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if m.Len() != 5 || m.Dim() != 3 {
		t.Fatalf("Len/Dim = %d/%d", m.Len(), m.Dim())
	}

	got, err := m.Analogy("man", "king", "woman", 1)
	if err != nil {
		t.Fatalf("Analogy: %v", err)
	}
	if len(got) != 1 || got[0] != "queen" {
		t.Fatalf("Analogy = %v, want [queen]", got)
	}

	res, err := m.Nearest("king", 1)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(res) != 1 || res[0].Term != "man" {
		t.Fatalf("Nearest(king) = %+v", res)
	}
}

func TestModelBackoff(t *testing.T) {
	m, err := New(royalty(), WithBackoff(embeddings.MapSource{
		"royal":  {0, 1, 0},
		"female": {0, 0, 1},
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := m.Lookup("royal female")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v[0] != 0 || v[1] != 0.5 || v[2] != 0.5 {
		t.Fatalf("Lookup = %v", v)
	}
	if _, err := m.Lookup("dragon"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
