package embeddings

import (
	"errors"

	"github.com/headlands-org/go-wordvec/internal/vecfile"
)

// BuildAliasVocabulary synthesizes a vector for every phrase in terms as the
// lax token average over src. Phrases with no known token are left out.
// The result is in terms order and is suitable input for NewStore, giving a
// phrase-level candidate vocabulary that backs off to src.
func BuildAliasVocabulary(terms []string, src Source) ([]vecfile.Entry, error) {
	out := make([]vecfile.Entry, 0, len(terms))
	for _, t := range terms {
		v, err := LaxTokenAverage(t, src)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, vecfile.Entry{Term: t, Vector: v})
	}
	return out, nil
}
