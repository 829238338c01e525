package vecdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidVector is returned when a stored blob does not decode.
var ErrInvalidVector = errors.New("vecdb: invalid vector blob")

// encodeVector lays a vector out as an int32 length followed by
// little-endian float32 elements.
func encodeVector(vec []float32) ([]byte, error) {
	if len(vec) > math.MaxInt32 {
		return nil, fmt.Errorf("vecdb: vector too large: %d elements", len(vec))
	}
	buf := make([]byte, 4+4*len(vec))
	binary.LittleEndian.PutUint32(buf, uint32(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4+4*i:], math.Float32bits(v))
	}
	return buf, nil
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, ErrInvalidVector
	}
	n := int(int32(binary.LittleEndian.Uint32(data)))
	if n < 0 || len(data) != 4+4*n {
		return nil, ErrInvalidVector
	}
	vec := make([]float32, n)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4+4*i:]))
	}
	return vec, nil
}
