package vecfile

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// The constrained layout splits terms from vectors, as GloVe output does:
//
//	vocab file:   one "<term> [<count>]" line per row, in row order; a
//	              term may be a multi-word phrase (see stripCount), and
//	              the writer adds a tab-separated count where one is
//	              needed to keep the phrase whole
//	vector file:  "<count> <dimension> [<flag>]\n" then count rows of
//	              dimension raw little-endian elements, no separators
//
// Rows sit at fixed offsets, so rows outside the candidate vocabulary are
// never decoded.

// ReadConstrained loads the rows of a constrained vector file whose terms
// vocab admits, in row order. A nil vocab loads every row.
func ReadConstrained(vectorsPath, vocabPath string, vocab Vocabulary, opts ...Option) ([]Entry, Header, error) {
	o := applyOptions(opts)
	start := time.Now()

	terms, err := readLines(vocabPath, true)
	if err != nil {
		return nil, Header{}, err
	}

	r, err := Open(vectorsPath, o.ChunkSize)
	if err != nil {
		return nil, Header{}, err
	}
	defer r.Close()

	hdr, off, err := r.ReadHeader()
	if err != nil {
		return nil, Header{}, err
	}
	if len(terms) != hdr.Count {
		return nil, Header{}, formatErrorf(vocabPath, -1, "%d terms, vector header declares %d", len(terms), hdr.Count)
	}
	prec := hdr.Resolve(o.Precision)
	if err := hdr.checkFits(vectorsPath, off, r.Size()-off, prec.ElementSize(), 0); err != nil {
		return nil, Header{}, err
	}
	var rowBytes int64
	if hdr.Count > 0 {
		rowBytes = int64(hdr.Dimension * prec.ElementSize())
	}

	raw := make([]byte, rowBytes)
	var entries []Entry
	for i, term := range terms {
		if !vocab.Admits(term) {
			continue
		}
		if err := r.ReadExact(raw, off+int64(i)*rowBytes); err != nil {
			return nil, Header{}, err
		}
		entries = append(entries, Entry{Term: term, Vector: decodeVector(raw, hdr.Dimension, prec)})
	}

	o.Logger.Info("read constrained vectors",
		"path", vectorsPath, "rows", hdr.Count, "kept", len(entries), "dim", hdr.Dimension, "elapsed", time.Since(start))
	return entries, hdr, nil
}

// WriteConstrained writes entries as a constrained vocab/vector file pair
// with 4-byte elements.
func WriteConstrained(vectorsPath, vocabPath string, entries []Entry) (err error) {
	dim, err := inferDimension(entries)
	if err != nil {
		return err
	}

	terms := make([]string, len(entries))
	for i, e := range entries {
		line, err := vocabLine(e.Term)
		if err != nil {
			return fmt.Errorf("vecfile: entry %d: %w", i, err)
		}
		terms[i] = line
	}
	vf, err := os.Create(vocabPath)
	if err != nil {
		return fmt.Errorf("vecfile: create %s: %w", vocabPath, err)
	}
	if err := WriteVocab(vf, terms); err != nil {
		vf.Close()
		return fmt.Errorf("vecfile: write %s: %w", vocabPath, err)
	}
	if err := vf.Close(); err != nil {
		return fmt.Errorf("vecfile: close %s: %w", vocabPath, err)
	}

	f, err := os.Create(vectorsPath)
	if err != nil {
		return fmt.Errorf("vecfile: create %s: %w", vectorsPath, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("vecfile: close %s: %w", vectorsPath, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(entries), dim); err != nil {
		return err
	}
	raw := make([]byte, dim*4)
	for _, e := range entries {
		for j, v := range e.Vector {
			byteOrder.PutUint32(raw[j*4:], math.Float32bits(v))
		}
		if _, err := bw.Write(raw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// vocabLine renders term as a constrained vocab line that reads back as
// term. A term the count rule would cut, such as "apollo 11", gets an
// explicit zero count column.
func vocabLine(term string) (string, error) {
	if term == "" || term != strings.TrimSpace(term) || strings.ContainsAny(term, "\r\n") {
		return "", fmt.Errorf("term %q cannot be stored on one vocab line", term)
	}
	if stripCount(term) != term {
		return term + "\t0", nil
	}
	return term, nil
}
