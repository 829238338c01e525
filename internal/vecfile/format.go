// Package vecfile reads and writes word-vector files in the word2vec binary
// and text layouts, plus a vocabulary-constrained layout for sources too
// large to load whole.
package vecfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Format selects the on-disk layout of a vector file.
type Format int

const (
	// FormatBinary is the word2vec binary layout: an ASCII header line,
	// then per record the term, a single space, raw little-endian floats
	// and a newline.
	FormatBinary Format = iota
	// FormatText is the word2vec text layout: an ASCII header line, then
	// one line per term holding the term and its decimal values.
	FormatText
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "bin"
	case FormatText:
		return "text"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a name ("bin", "binary", "text", "txt") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "bin", "binary", "":
		return FormatBinary, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return 0, fmt.Errorf("vecfile: unknown format %q", name)
	}
}

// Precision controls the width of floating-point elements in binary files.
type Precision int

const (
	// PrecisionAuto applies the header heuristic: a third integer in the
	// header line means 8-byte elements, otherwise 4-byte elements. Nothing
	// in the file guarantees this; it is a convention of some trainers.
	PrecisionAuto Precision = iota
	// PrecisionFloat32 forces 4-byte elements.
	PrecisionFloat32
	// PrecisionFloat64 forces 8-byte elements.
	PrecisionFloat64
)

// String returns the name of the precision.
func (p Precision) String() string {
	switch p {
	case PrecisionAuto:
		return "auto"
	case PrecisionFloat32:
		return "f32"
	case PrecisionFloat64:
		return "f64"
	default:
		return fmt.Sprintf("Precision(%d)", int(p))
	}
}

// ParsePrecision maps a name ("auto", "f32", "f64") to a Precision.
func ParsePrecision(name string) (Precision, error) {
	switch strings.ToLower(name) {
	case "auto", "":
		return PrecisionAuto, nil
	case "f32", "float32", "4":
		return PrecisionFloat32, nil
	case "f64", "float64", "8":
		return PrecisionFloat64, nil
	default:
		return 0, fmt.Errorf("vecfile: unknown precision %q", name)
	}
}

// ElementSize returns the byte width of one element.
func (p Precision) ElementSize() int {
	if p == PrecisionFloat64 {
		return 8
	}
	return 4
}

// Header is the summary line at the top of every vector file.
type Header struct {
	Count     int
	Dimension int
	// Flagged is true when the header carried a third integer.
	Flagged bool
}

// Resolve applies the precision heuristic to the header unless the caller
// forced a width.
func (h Header) Resolve(p Precision) Precision {
	if p != PrecisionAuto {
		return p
	}
	if h.Flagged {
		return PrecisionFloat64
	}
	return PrecisionFloat32
}

// checkFits reports a FormatError when the declared records cannot fit in
// the avail bytes that follow the header. Each record holds Dimension
// elements of elem bytes plus at least overhead bytes of framing.
func (h Header) checkFits(path string, off, avail int64, elem int, overhead int64) error {
	if h.Count == 0 {
		return nil
	}
	if int64(h.Dimension) > avail/int64(elem) {
		return formatErrorf(path, off, "header declares dimension %d, only %d bytes remain", h.Dimension, avail)
	}
	per := int64(h.Dimension*elem) + overhead
	if per > 0 && int64(h.Count) > avail/per {
		return formatErrorf(path, off, "header declares %d records of at least %d bytes, only %d bytes remain", h.Count, per, avail)
	}
	return nil
}

// Entry is one term and its vector. Codecs produce and consume ordered
// slices of entries so that load order is deterministic.
type Entry struct {
	Term   string
	Vector []float32
}

// ErrFormat is matched by every *FormatError.
var ErrFormat = errors.New("malformed vector file")

// FormatError reports a structural problem in a vector file. Loads that hit
// one are aborted; no partial result is returned.
type FormatError struct {
	Path   string
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("vecfile: %s: offset %d: %s", e.Path, e.Offset, e.Reason)
	}
	return fmt.Sprintf("vecfile: %s: %s", e.Path, e.Reason)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErrorf(path string, offset int64, format string, args ...any) error {
	return &FormatError{Path: path, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// MaxDimension bounds the vector dimension a header may declare.
const MaxDimension = 1 << 20

// parseHeader parses "<count> <dimension> [<flag>]".
func parseHeader(path, line string) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return Header{}, formatErrorf(path, 0, "header %q: want 2 or 3 integers, got %d fields", line, len(fields))
	}
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Header{}, formatErrorf(path, 0, "header %q: field %d is not an integer", line, i)
		}
		if n < 0 {
			return Header{}, formatErrorf(path, 0, "header %q: negative field %d", line, i)
		}
		nums[i] = n
	}
	if nums[1] > MaxDimension {
		return Header{}, formatErrorf(path, 0, "header %q: dimension exceeds %d", line, MaxDimension)
	}
	return Header{Count: nums[0], Dimension: nums[1], Flagged: len(fields) == 3}, nil
}

// inferDimension returns the dimension of the first entry, or 0 when there
// are none, and checks that every other entry agrees.
func inferDimension(entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	dim := len(entries[0].Vector)
	for i, e := range entries {
		if len(e.Vector) != dim {
			return 0, fmt.Errorf("vecfile: entry %d (%q) has dimension %d, want %d", i, e.Term, len(e.Vector), dim)
		}
	}
	return dim, nil
}

var byteOrder = binary.LittleEndian
