package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/kdknn/internal/conv"
)

// Compression defines the block compression applied to a frame.
type Compression uint8

const (
	// CompressionNone sends the payload as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD Compression = 2
)

// String returns a string representation of the Compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// ParseCompression maps a name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("wire: unknown compression %q", name)
	}
}

// ErrCorruptFrame is returned when a frame header or body is malformed.
var ErrCorruptFrame = errors.New("wire: corrupt frame")

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Frame header: [Compression uint8][UncompressedSize uint32][BodySize uint32].
// A frame whose compression did not pay off is stored with CompressionNone.
const frameHeaderSize = 9

// Compress wraps payload into a frame using c.
func Compress(payload []byte, c Compression) ([]byte, error) {
	body := payload
	used := CompressionNone

	if len(payload) > 0 {
		switch c {
		case CompressionNone:
		case CompressionLZ4:
			dst := make([]byte, lz4.CompressBlockBound(len(payload)))
			n, err := lz4.CompressBlock(payload, dst, nil)
			if err != nil {
				return nil, fmt.Errorf("wire: lz4 compress: %w", err)
			}
			if n > 0 && n < len(payload) {
				body, used = dst[:n], CompressionLZ4
			}
		case CompressionZSTD:
			enc := getZstdEncoder()
			out := enc.EncodeAll(payload, nil)
			zstdEncoderPool.Put(enc)
			if len(out) < len(payload) {
				body, used = out, CompressionZSTD
			}
		default:
			return nil, fmt.Errorf("wire: unsupported compression %v", c)
		}
	}

	size, err := conv.IntToUint32(len(payload))
	if err != nil {
		return nil, fmt.Errorf("wire: payload too large: %w", err)
	}

	frame := make([]byte, frameHeaderSize+len(body))
	frame[0] = byte(used)
	binary.LittleEndian.PutUint32(frame[1:], size)
	binary.LittleEndian.PutUint32(frame[5:], uint32(len(body)))
	copy(frame[frameHeaderSize:], body)
	return frame, nil
}

// Decompress unwraps a frame produced by Compress.
func Decompress(frame []byte) ([]byte, error) {
	if len(frame) < frameHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header is %d", ErrCorruptFrame, len(frame), frameHeaderSize)
	}

	c := Compression(frame[0])
	size := binary.LittleEndian.Uint32(frame[1:])
	bodySize := binary.LittleEndian.Uint32(frame[5:])
	if uint32(len(frame)-frameHeaderSize) != bodySize {
		return nil, fmt.Errorf("%w: body is %d bytes, header says %d", ErrCorruptFrame, len(frame)-frameHeaderSize, bodySize)
	}
	body := frame[frameHeaderSize:]

	switch c {
	case CompressionNone:
		if bodySize != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorruptFrame)
		}
		return body, nil

	case CompressionLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorruptFrame, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptFrame)
		}
		return out, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(body, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorruptFrame, err)
		}
		if uint32(len(out)) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptFrame)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptFrame, c)
	}
}
