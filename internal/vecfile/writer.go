package vecfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// WriteBinary writes entries in the word2vec binary layout. Elements are
// always written as 4-byte floats and the header carries no precision flag.
func WriteBinary(w io.Writer, entries []Entry) error {
	dim, err := inferDimension(entries)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(entries), dim); err != nil {
		return err
	}
	raw := make([]byte, dim*4)
	for i, e := range entries {
		if strings.IndexByte(e.Term, ' ') >= 0 || e.Term == "" {
			return fmt.Errorf("vecfile: entry %d: term %q cannot be delimited in binary layout", i, e.Term)
		}
		for j, v := range e.Vector {
			byteOrder.PutUint32(raw[j*4:], math.Float32bits(v))
		}
		if _, err := bw.WriteString(e.Term); err != nil {
			return err
		}
		if err := bw.WriteByte(' '); err != nil {
			return err
		}
		if _, err := bw.Write(raw); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read dispatches to ReadBinary or ReadText.
func Read(path string, format Format, opts ...Option) ([]Entry, Header, error) {
	switch format {
	case FormatBinary:
		return ReadBinary(path, opts...)
	case FormatText:
		return ReadText(path, opts...)
	default:
		return nil, Header{}, fmt.Errorf("vecfile: unsupported format %s", format)
	}
}

// WriteFile creates path and writes entries in the given format.
func WriteFile(path string, format Format, entries []Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vecfile: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("vecfile: close %s: %w", path, cerr)
		}
	}()

	switch format {
	case FormatBinary:
		err = WriteBinary(f, entries)
	case FormatText:
		err = WriteText(f, entries)
	default:
		err = fmt.Errorf("vecfile: unsupported format %s", format)
	}
	if err != nil {
		return fmt.Errorf("vecfile: write %s: %w", path, err)
	}
	return nil
}
