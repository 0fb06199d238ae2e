package postgres

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// CompressionAlgo specifies how a stored payload is encoded.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which bodies are compressed.
const DefaultCompressThreshold = 4 * 1024

// Compressor encodes large payloads with zstd. Encoder and decoder are safe for
// concurrent EncodeAll/DecodeAll calls.
type Compressor struct {
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

// NewCompressor creates a compressor; payloads up to threshold bytes are stored as is.
func NewCompressor(threshold int) (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Compressor{encoder: encoder, decoder: decoder, threshold: threshold}, nil
}

// Encode returns the stored form of payload and its algorithm.
func (c *Compressor) Encode(payload []byte) ([]byte, CompressionAlgo) {
	if c == nil || len(payload) <= c.threshold {
		return payload, CompressionNone
	}
	return c.encoder.EncodeAll(payload, make([]byte, 0, len(payload)/2)), CompressionZstd
}

// Decode reverses Encode.
func (c *Compressor) Decode(stored []byte, algo CompressionAlgo) ([]byte, error) {
	switch algo {
	case "", CompressionNone:
		return stored, nil
	case CompressionZstd:
		if c == nil {
			return nil, fmt.Errorf("zstd payload without a decoder")
		}
		out, err := c.decoder.DecodeAll(stored, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown compression %q", algo)
}
