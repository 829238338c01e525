package vecfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	maxTextLine = 64 << 20
	maxPrealloc = 1 << 16
)

// ReadText loads a word2vec text file in file order.
func ReadText(path string, opts ...Option) ([]Entry, Header, error) {
	o := applyOptions(opts)
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("vecfile: open %s: %w", path, err)
	}
	defer f.Close()

	entries, hdr, err := decodeText(path, f)
	if err != nil {
		return nil, Header{}, err
	}
	o.Logger.Info("read text vectors",
		"path", path, "terms", len(entries), "dim", hdr.Dimension, "elapsed", time.Since(start))
	return entries, hdr, nil
}

func decodeText(path string, r io.Reader) ([]Entry, Header, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxTextLine)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, Header{}, fmt.Errorf("vecfile: read %s: %w", path, err)
		}
		return nil, Header{}, formatErrorf(path, 0, "empty file")
	}
	hdr, err := parseHeader(path, sc.Text())
	if err != nil {
		return nil, Header{}, err
	}
	if hdr.Flagged {
		return nil, Header{}, formatErrorf(path, 0, "text header takes 2 integers, got 3")
	}

	// The header is untrusted; grow past this as lines arrive.
	entries := make([]Entry, 0, min(hdr.Count, maxPrealloc))
	line := 1
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields)-1 != hdr.Dimension {
			return nil, Header{}, &FormatError{Path: path, Offset: -1,
				Reason: fmt.Sprintf("line %d (%q): %d values, want %d", line, fields[0], len(fields)-1, hdr.Dimension)}
		}
		vec := make([]float32, hdr.Dimension)
		for i, tok := range fields[1:] {
			v, err := strconv.ParseFloat(tok, 32)
			if err != nil {
				return nil, Header{}, &FormatError{Path: path, Offset: -1,
					Reason: fmt.Sprintf("line %d (%q): value %d %q is not a number", line, fields[0], i, tok)}
			}
			vec[i] = float32(v)
		}
		entries = append(entries, Entry{Term: fields[0], Vector: vec})
	}
	if err := sc.Err(); err != nil {
		return nil, Header{}, fmt.Errorf("vecfile: read %s: %w", path, err)
	}
	if len(entries) != hdr.Count {
		return nil, Header{}, formatErrorf(path, -1, "read %d lines, header declares %d", len(entries), hdr.Count)
	}
	return entries, hdr, nil
}

// WriteText writes entries in the text layout, each element with eight
// decimal digits. Terms must be non-empty and free of whitespace.
func WriteText(w io.Writer, entries []Entry) error {
	dim, err := inferDimension(entries)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(entries), dim); err != nil {
		return err
	}
	num := make([]byte, 0, 32)
	for i, e := range entries {
		if e.Term == "" || strings.ContainsFunc(e.Term, unicode.IsSpace) {
			return fmt.Errorf("vecfile: entry %d: term %q cannot be delimited in text layout", i, e.Term)
		}
		if _, err := bw.WriteString(e.Term); err != nil {
			return err
		}
		for _, v := range e.Vector {
			num = append(num[:0], ' ')
			num = strconv.AppendFloat(num, float64(v), 'f', 8, 64)
			if _, err := bw.Write(num); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
