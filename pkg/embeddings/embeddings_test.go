package embeddings

import (
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/text/unicode/norm"

	"github.com/headlands-org/go-wordvec/internal/vecfile"
)

func phraseEntries() []vecfile.Entry {
	return []vecfile.Entry{
		{Term: "heart", Vector: []float32{1, 0, 0}},
		{Term: "attack", Vector: []float32{0, 1, 0}},
		{Term: "heart_attack", Vector: []float32{0.5, 0.5, 0.7}},
		{Term: "aspirin", Vector: []float32{0, 0, 1}},
	}
}

func mustStore(t *testing.T, entries []vecfile.Entry) *Store {
	t.Helper()
	s, err := NewStore(entries)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func vecEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStoreIndexBijection(t *testing.T) {
	s := mustStore(t, phraseEntries())
	if s.Len() != 4 || s.Dim() != 3 {
		t.Fatalf("Len/Dim = %d/%d", s.Len(), s.Dim())
	}
	for i := 0; i < s.Len(); i++ {
		term, err := s.TermAt(i)
		if err != nil {
			t.Fatalf("TermAt(%d): %v", i, err)
		}
		got, ok := s.Index(term)
		if !ok || got != i {
			t.Fatalf("Index(TermAt(%d)) = %d, %v", i, got, ok)
		}
	}
	if _, ok := s.Index("missing"); ok {
		t.Fatal("Index(missing) reported found")
	}
}

func TestStoreDuplicateLastWriteWins(t *testing.T) {
	s := mustStore(t, []vecfile.Entry{
		{Term: "a", Vector: []float32{1, 1}},
		{Term: "b", Vector: []float32{2, 2}},
		{Term: "a", Vector: []float32{3, 3}},
	})
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if i, _ := s.Index("a"); i != 0 {
		t.Fatalf("Index(a) = %d, want first-seen position 0", i)
	}
	v, _ := s.VectorAt(0)
	if !vecEqual(v, []float32{3, 3}) {
		t.Fatalf("VectorAt(0) = %v, want later vector", v)
	}
}

func TestStoreRejectsMixedDimensions(t *testing.T) {
	_, err := NewStore([]vecfile.Entry{
		{Term: "a", Vector: []float32{1, 1}},
		{Term: "b", Vector: []float32{1}},
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestStoreRanges(t *testing.T) {
	s := mustStore(t, phraseEntries())
	for _, i := range []int{-1, 4, 100} {
		if _, err := s.VectorAt(i); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("VectorAt(%d): expected ErrOutOfRange, got %v", i, err)
		}
		if _, err := s.TermAt(i); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("TermAt(%d): expected ErrOutOfRange, got %v", i, err)
		}
	}
}

func TestStoreMatrixIsACopy(t *testing.T) {
	entries := phraseEntries()
	s := mustStore(t, entries)
	entries[0].Vector[0] = 42

	m := s.Matrix()
	if len(m) != s.Len() || m[0][0] != 1 {
		t.Fatalf("store aliased its input: %v", m[0])
	}
	m[1][1] = -9
	if v, _ := s.VectorAt(1); v[1] != 1 {
		t.Fatal("Matrix result aliases store storage")
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	if err := vecfile.WriteFile(path, vecfile.FormatBinary, phraseEntries()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Load(path, vecfile.FormatBinary)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 4 {
		t.Fatalf("Len = %d", s.Len())
	}
	if got := s.Terms(); got[2] != "heart_attack" {
		t.Fatalf("Terms = %v", got)
	}
}

func TestLoadConstrained(t *testing.T) {
	dir := t.TempDir()
	vecPath, vocabPath := filepath.Join(dir, "v.bin"), filepath.Join(dir, "v.vocab")
	if err := vecfile.WriteConstrained(vecPath, vocabPath, phraseEntries()); err != nil {
		t.Fatalf("WriteConstrained: %v", err)
	}
	s, err := LoadConstrained(vecPath, vocabPath, vecfile.NewVocabulary("aspirin", "heart"))
	if err != nil {
		t.Fatalf("LoadConstrained: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if i, _ := s.Index("aspirin"); i != 1 {
		t.Fatalf("Index(aspirin) = %d, want 1", i)
	}
}

func TestWrapperLookupByIndex(t *testing.T) {
	w := NewWrapper(mustStore(t, phraseEntries()), NoBackoff())
	v, err := w.LookupByIndex(3)
	if err != nil || !vecEqual(v, []float32{0, 0, 1}) {
		t.Fatalf("LookupByIndex(3) = %v, %v", v, err)
	}
	var re *RangeError
	if _, err := w.LookupByIndex(4); !errors.As(err, &re) || re.Len != 4 {
		t.Fatalf("expected *RangeError, got %v", err)
	}
}

func TestWrapperBackoff(t *testing.T) {
	primary := mustStore(t, []vecfile.Entry{{Term: "horse", Vector: []float32{0.3, 0.3}}})
	words := MapSource{"cat": {1, 0}, "dog": {0, 1}}
	w := NewWrapper(primary, BackoffFrom(words))

	tests := []struct {
		name string
		term string
		want []float32
		err  error
	}{
		{name: "stored verbatim", term: "horse", want: []float32{0.3, 0.3}},
		{name: "average of both tokens", term: "cat dog", want: []float32{0.5, 0.5}},
		{name: "unknown tokens skipped", term: "cat bird", want: []float32{1, 0}},
		{name: "extra whitespace", term: "  dog\tcat ", want: []float32{0.5, 0.5}},
		{name: "no token known", term: "bird fish", err: ErrNotFound},
		{name: "empty", term: "", err: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := w.LookupByTerm(tt.term)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v (%v)", tt.err, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupByTerm(%q): %v", tt.term, err)
			}
			if !vecEqual(got, tt.want) {
				t.Fatalf("LookupByTerm(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}

	if _, ok := primary.Index("cat dog"); ok {
		t.Fatal("backoff wrote into the primary store")
	}
	if len(words) != 2 {
		t.Fatal("backoff wrote into the backoff source")
	}
}

func TestWrapperWithoutBackoff(t *testing.T) {
	w := NewWrapper(mustStore(t, phraseEntries()), NoBackoff())
	var le *LookupError
	if _, err := w.LookupByTerm("heart attack"); !errors.As(err, &le) || le.Term != "heart attack" {
		t.Fatalf("expected *LookupError, got %v", err)
	}
	if _, err := NewWrapper(mustStore(t, nil), BackoffFrom(nil)).LookupByTerm("x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("nil source: expected ErrNotFound, got %v", err)
	}
}

func TestWrapperBackoffDimensionMismatch(t *testing.T) {
	primary := mustStore(t, phraseEntries())
	w := NewWrapper(primary, BackoffFrom(MapSource{"cat": {1, 0}, "dog": {0, 1}}))
	if _, err := w.LookupByTerm("cat dog"); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if v, err := w.LookupByTerm("heart"); err != nil || len(v) != 3 {
		t.Fatalf("stored term = %v, %v", v, err)
	}
}

func TestWrapperStoreAsBackoff(t *testing.T) {
	words := mustStore(t, phraseEntries())
	phrases := mustStore(t, []vecfile.Entry{{Term: "heart attack", Vector: []float32{9, 9, 9}}})
	w := NewWrapper(phrases, BackoffFrom(StoreSource(words)))

	v, err := w.LookupByTerm("attack aspirin")
	if err != nil {
		t.Fatalf("LookupByTerm: %v", err)
	}
	if !vecEqual(v, []float32{0, 0.5, 0.5}) {
		t.Fatalf("LookupByTerm = %v", v)
	}
	v, err = w.LookupByTerm("heart attack")
	if err != nil || v[0] != 9 {
		t.Fatalf("stored phrase should win over backoff: %v, %v", v, err)
	}
}

func TestWrapperNormalization(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	s := mustStore(t, []vecfile.Entry{{Term: composed, Vector: []float32{1, 2}}})

	if _, err := NewWrapper(s, NoBackoff()).LookupByTerm(decomposed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("without normalization: expected ErrNotFound, got %v", err)
	}
	w := NewWrapper(s, NoBackoff(), WithNormalization(norm.NFC))
	if _, err := w.LookupByTerm(decomposed); err != nil {
		t.Fatalf("with NFC: %v", err)
	}
	if i, ok := w.Index(decomposed); !ok || i != 0 {
		t.Fatalf("Index with NFC = %d, %v", i, ok)
	}
}

func TestBuildAliasVocabulary(t *testing.T) {
	words := MapSource{"heart": {1, 0}, "attack": {0, 1}, "stroke": {1, 1}}
	entries, err := BuildAliasVocabulary([]string{"heart attack", "unknown thing", "stroke"}, words)
	if err != nil {
		t.Fatalf("BuildAliasVocabulary: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Term != "heart attack" || !vecEqual(entries[0].Vector, []float32{0.5, 0.5}) {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if entries[1].Term != "stroke" {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
}
