package vecfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Vocabulary is a set of candidate terms. A nil Vocabulary admits every
// term.
type Vocabulary map[string]struct{}

// NewVocabulary builds a Vocabulary from terms.
func NewVocabulary(terms ...string) Vocabulary {
	v := make(Vocabulary, len(terms))
	for _, t := range terms {
		v[t] = struct{}{}
	}
	return v
}

// Admits reports whether term passes the constraint.
func (v Vocabulary) Admits(term string) bool {
	if v == nil {
		return true
	}
	_, ok := v[term]
	return ok
}

// ReadVocab reads a term list with one term per line. Whole lines are
// kept, so multi-word phrases survive; blank lines are skipped.
func ReadVocab(path string) ([]string, error) {
	return readLines(path, false)
}

// WriteVocab writes one term per line.
func WriteVocab(w io.Writer, terms []string) error {
	bw := bufio.NewWriter(w)
	for _, t := range terms {
		if _, err := bw.WriteString(t); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func readLines(path string, countColumn bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vecfile: open %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxTextLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if countColumn {
			line = stripCount(line)
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vecfile: read %s: %w", path, err)
	}
	return out, nil
}

// stripCount drops a frequency column from a constrained vocab line. A
// count follows the last tab, or is the second of exactly two space
// separated fields; anything else is a whole phrase.
func stripCount(line string) string {
	if i := strings.LastIndexByte(line, '\t'); i > 0 {
		if _, err := strconv.Atoi(strings.TrimSpace(line[i+1:])); err == nil {
			return strings.TrimSpace(line[:i])
		}
	}
	f := strings.Fields(line)
	if len(f) == 2 {
		if _, err := strconv.Atoi(f[1]); err == nil {
			return f[0]
		}
	}
	return line
}
