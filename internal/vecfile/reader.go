package vecfile

import (
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/exp/mmap"
)

// Reader provides offset-addressed access to a memory-mapped vector file.
type Reader struct {
	path  string
	mmap  *mmap.ReaderAt
	size  int64
	chunk []byte
}

// Open memory-maps path for reading.
func Open(path string, chunkSize int) (*Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vecfile: mmap %s: %w", path, err)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader{
		path:  path,
		mmap:  m,
		size:  int64(m.Len()),
		chunk: make([]byte, chunkSize),
	}, nil
}

// Close unmaps the file.
func (r *Reader) Close() error {
	if r.mmap == nil {
		return nil
	}
	err := r.mmap.Close()
	r.mmap = nil
	return err
}

// Size returns the file length in bytes.
func (r *Reader) Size() int64 { return r.size }

// IndexByte returns the absolute offset of the first delim at or after off,
// or -1 when the file ends first. The file is read ahead one bounded chunk
// at a time; a delimiter beyond the first chunk widens the search.
func (r *Reader) IndexByte(off int64, delim byte) (int64, error) {
	for off < r.size {
		n, err := r.mmap.ReadAt(r.chunk, off)
		if err != nil && err != io.EOF {
			return -1, fmt.Errorf("vecfile: read %s at %d: %w", r.path, off, err)
		}
		for i := 0; i < n; i++ {
			if r.chunk[i] == delim {
				return off + int64(i), nil
			}
		}
		off += int64(n)
		if n == 0 {
			break
		}
	}
	return -1, nil
}

// ReadExact reads exactly len(buf) bytes starting at off.
func (r *Reader) ReadExact(buf []byte, off int64) error {
	if off+int64(len(buf)) > r.size {
		return formatErrorf(r.path, off, "truncated: need %d bytes, %d remain", len(buf), r.size-off)
	}
	n, err := r.mmap.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		return formatErrorf(r.path, off, "truncated: read %d of %d bytes", n, len(buf))
	}
	return fmt.Errorf("vecfile: read %s at %d: %w", r.path, off, err)
}

// ByteAt returns the byte at off.
func (r *Reader) ByteAt(off int64) byte {
	return r.mmap.At(int(off))
}

// ReadHeader parses the first line of the file and returns it with the
// offset of the first byte after the header newline.
func (r *Reader) ReadHeader() (Header, int64, error) {
	if r.size == 0 {
		return Header{}, 0, formatErrorf(r.path, 0, "empty file")
	}
	nl, err := r.IndexByte(0, '\n')
	if err != nil {
		return Header{}, 0, err
	}
	if nl < 0 {
		return Header{}, 0, formatErrorf(r.path, 0, "missing header newline")
	}
	line := make([]byte, nl)
	if err := r.ReadExact(line, 0); err != nil {
		return Header{}, 0, err
	}
	hdr, err := parseHeader(r.path, string(line))
	if err != nil {
		return Header{}, 0, err
	}
	return hdr, nl + 1, nil
}

// ReadBinary loads every record of a word2vec binary file in file order.
func ReadBinary(path string, opts ...Option) ([]Entry, Header, error) {
	o := applyOptions(opts)
	start := time.Now()

	r, err := Open(path, o.ChunkSize)
	if err != nil {
		return nil, Header{}, err
	}
	defer r.Close()

	hdr, off, err := r.ReadHeader()
	if err != nil {
		return nil, Header{}, err
	}
	prec := hdr.Resolve(o.Precision)
	o.Logger.Debug("reading binary vectors",
		"path", path, "declared", hdr.Count, "dim", hdr.Dimension, "precision", prec.String())

	entries, err := readRecords(r, off, hdr, prec)
	if err != nil {
		return nil, Header{}, err
	}

	o.Logger.Info("read binary vectors",
		"path", path, "terms", len(entries), "dim", hdr.Dimension, "elapsed", time.Since(start))
	return entries, hdr, nil
}

func readRecords(r *Reader, off int64, hdr Header, prec Precision) ([]Entry, error) {
	elem := prec.ElementSize()
	// A record is at least a one-byte term, the delimiter and the vector.
	if err := hdr.checkFits(r.path, off, r.size-off, elem, 2); err != nil {
		return nil, err
	}
	var raw []byte
	vecBytes := 0
	if hdr.Count > 0 {
		vecBytes = hdr.Dimension * elem
		raw = make([]byte, vecBytes)
	}
	entries := make([]Entry, 0, min(hdr.Count, maxPrealloc))

	for off < r.size {
		// Records are newline-terminated; tolerate blank separators.
		if r.ByteAt(off) == '\n' {
			off++
			continue
		}
		sp, err := r.IndexByte(off, ' ')
		if err != nil {
			return nil, err
		}
		if sp < 0 {
			return nil, formatErrorf(r.path, off, "truncated record %d: no term delimiter", len(entries))
		}
		if sp == off {
			return nil, formatErrorf(r.path, off, "record %d: empty term", len(entries))
		}
		if len(entries) == hdr.Count {
			return nil, formatErrorf(r.path, off, "more records than the declared %d", hdr.Count)
		}

		term := make([]byte, sp-off)
		if err := r.ReadExact(term, off); err != nil {
			return nil, err
		}
		off = sp + 1
		if err := r.ReadExact(raw, off); err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", len(entries), term, err)
		}
		off += int64(vecBytes)
		if off < r.size && r.ByteAt(off) == '\n' {
			off++
		}

		entries = append(entries, Entry{Term: string(term), Vector: decodeVector(raw, hdr.Dimension, prec)})
	}

	if len(entries) != hdr.Count {
		return nil, formatErrorf(r.path, -1, "read %d records, header declares %d", len(entries), hdr.Count)
	}
	return entries, nil
}

// decodeVector converts dim little-endian elements to float32. 8-byte
// elements are narrowed.
func decodeVector(raw []byte, dim int, prec Precision) []float32 {
	vec := make([]float32, dim)
	if prec == PrecisionFloat64 {
		for i := range vec {
			vec[i] = float32(math.Float64frombits(byteOrder.Uint64(raw[i*8:])))
		}
		return vec
	}
	for i := range vec {
		vec[i] = math.Float32frombits(byteOrder.Uint32(raw[i*4:]))
	}
	return vec
}
