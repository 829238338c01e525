package vecdb

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/headlands-org/go-wordvec/internal/vecfile"
	"github.com/headlands-org/go-wordvec/pkg/embeddings"
)

func sampleEntries() []vecfile.Entry {
	return []vecfile.Entry{
		{Term: "cat", Vector: []float32{1, 0, 0}},
		{Term: "dog", Vector: []float32{0, 1, 0}},
		{Term: "fish", Vector: []float32{0, 0, 1}},
		{Term: "cat", Vector: []float32{2, 0, 0}},
	}
}

func createDB(t *testing.T, entries []vecfile.Entry, id uuid.UUID) *DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "words.db")
	if err := Create(ctx, path, entries, id); err != nil {
		t.Fatalf("Create: %v", err)
	}
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndOpen(t *testing.T) {
	id := uuid.New()
	db := createDB(t, sampleEntries(), id)

	if db.Dim() != 3 || db.Len() != 3 {
		t.Fatalf("Dim/Len = %d/%d, want 3/3", db.Dim(), db.Len())
	}
	if db.SourceID() != id {
		t.Fatalf("SourceID = %s, want %s", db.SourceID(), id)
	}

	v, ok, err := db.Vector("cat")
	if err != nil || !ok {
		t.Fatalf("Vector(cat) = %v, %v, %v", v, ok, err)
	}
	if v[0] != 2 {
		t.Fatalf("Vector(cat) = %v, want later vector", v)
	}
	if _, ok, err := db.Vector("horse"); ok || err != nil {
		t.Fatalf("Vector(horse) = %v, %v", ok, err)
	}

	entries, err := db.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	var terms []string
	for _, e := range entries {
		terms = append(terms, e.Term)
	}
	if len(terms) != 3 || terms[0] != "cat" || terms[1] != "dog" || terms[2] != "fish" {
		t.Fatalf("Entries order = %v", terms)
	}
	listed, err := db.Terms(context.Background())
	if err != nil || len(listed) != 3 || listed[2] != "fish" {
		t.Fatalf("Terms = %v, %v", listed, err)
	}
}

func TestCreateRejectsMixedDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.db")
	err := Create(context.Background(), path, []vecfile.Entry{
		{Term: "a", Vector: []float32{1, 2}},
		{Term: "b", Vector: []float32{1}},
	}, uuid.Nil)
	if err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	if _, err := Open(context.Background(), path); err == nil {
		t.Fatal("expected error for missing database")
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Open created %s: %v", path, err)
	}
}

func TestPathWithURICharacters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "words?v=1#frag.db")
	if err := Create(ctx, path, sampleEntries(), uuid.Nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database not written at %s: %v", path, err)
	}
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if db.Len() != 3 {
		t.Fatalf("Len = %d", db.Len())
	}
}

func TestDSN(t *testing.T) {
	got := dsn("/data/a?b#c.db", true)
	if !strings.HasPrefix(got, "file:/data/a%3Fb%23c.db?") || !strings.Contains(got, "mode=ro") {
		t.Fatalf("dsn = %q", got)
	}
	if strings.Contains(dsn("/data/w.db", false), "mode=ro") {
		t.Fatal("writable dsn is read-only")
	}
}

func TestDBAsBackoffSource(t *testing.T) {
	db := createDB(t, sampleEntries(), uuid.Nil)
	primary, err := embeddings.NewStore(nil)
	if err != nil {
		t.Fatal(err)
	}
	w := embeddings.NewWrapper(primary, embeddings.BackoffFrom(db))

	v, err := w.LookupByTerm("dog fish")
	if err != nil {
		t.Fatalf("LookupByTerm: %v", err)
	}
	if v[0] != 0 || v[1] != 0.5 || v[2] != 0.5 {
		t.Fatalf("LookupByTerm = %v", v)
	}
	if _, err := w.LookupByTerm("unicorn"); !errors.Is(err, embeddings.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVectorEncoding(t *testing.T) {
	in := []float32{1.5, -2.25, 0, 3e-8}
	blob, err := encodeVector(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := decodeVector(blob)
	if err != nil {
		t.Fatalf("decodeVector: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("element %d: %v != %v", i, out[i], in[i])
		}
	}
	for _, bad := range [][]byte{nil, {1, 0}, blob[:len(blob)-1]} {
		if _, err := decodeVector(bad); !errors.Is(err, ErrInvalidVector) {
			t.Fatalf("decodeVector(%v): expected ErrInvalidVector, got %v", bad, err)
		}
	}
}
