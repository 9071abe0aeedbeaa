package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/kdknn/model"
)

// PointSize is the encoded size of one point record.
const PointSize = 3*8 + 4

// ErrShortRecord is returned when a payload is not a whole number of records.
var ErrShortRecord = errors.New("wire: payload is not a whole number of records")

// EncodePoints encodes points as consecutive fixed-size records.
func EncodePoints(points []model.Point) []byte {
	buf := make([]byte, len(points)*PointSize)
	for i, p := range points {
		off := i * PointSize
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(p.Y))
		binary.LittleEndian.PutUint64(buf[off+16:], math.Float64bits(p.Z))
		binary.LittleEndian.PutUint32(buf[off+24:], uint32(p.ID))
	}
	return buf
}

// DecodePoints decodes a payload produced by EncodePoints.
func DecodePoints(data []byte) ([]model.Point, error) {
	if len(data)%PointSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes, record size %d", ErrShortRecord, len(data), PointSize)
	}

	points := make([]model.Point, len(data)/PointSize)
	for i := range points {
		off := i * PointSize
		points[i] = model.Point{
			X:  math.Float64frombits(binary.LittleEndian.Uint64(data[off:])),
			Y:  math.Float64frombits(binary.LittleEndian.Uint64(data[off+8:])),
			Z:  math.Float64frombits(binary.LittleEndian.Uint64(data[off+16:])),
			ID: int32(binary.LittleEndian.Uint32(data[off+24:])),
		}
	}
	return points, nil
}

// EncodeInt32s packs values as little-endian int32.
func EncodeInt32s(values []int32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

// DecodeInt32s unpacks a payload produced by EncodeInt32s.
func DecodeInt32s(data []byte) ([]int32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes, record size 4", ErrShortRecord, len(data))
	}

	values := make([]int32, len(data)/4)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return values, nil
}

// EncodeInt32 packs a single value.
func EncodeInt32(v int32) []byte {
	return EncodeInt32s([]int32{v})
}

// DecodeInt32 unpacks a single value.
func DecodeInt32(data []byte) (int32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: %d bytes, want 4", ErrShortRecord, len(data))
	}
	return int32(binary.LittleEndian.Uint32(data)), nil
}
