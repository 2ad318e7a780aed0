package zarr

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Compressor IDs understood by Decompress and Compress.
const (
	CompressorZstd = "zstd"
	CompressorZlib = "zlib"
	CompressorGzip = "gzip"
)

// NewCompressorConfig returns the metadata entry for the named compressor.
// "" and "none" yield nil, which stores chunks raw.
func NewCompressorConfig(id string) (*CompressorConfig, error) {
	switch id {
	case "", "none":
		return nil, nil
	case CompressorZstd:
		return &CompressorConfig{ID: CompressorZstd, Level: 3}, nil
	case CompressorZlib, CompressorGzip:
		return &CompressorConfig{ID: id, Level: 5}, nil
	default:
		return nil, fmt.Errorf("unsupported compressor: %s", id)
	}
}

// Decompress decodes a stored chunk according to its compressor config.
func Decompress(cfg *CompressorConfig, data []byte) ([]byte, error) {
	if cfg == nil {
		return data, nil
	}
	switch cfg.ID {
	case CompressorZstd:
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer decoder.Close()
		return decoder.DecodeAll(data, nil)
	case CompressorZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to init zlib reader: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case CompressorGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to init gzip reader: %w", err)
		}
		defer gr.Close()
		return io.ReadAll(gr)
	default:
		return nil, fmt.Errorf("unsupported compressor: %s", cfg.ID)
	}
}

// Compress encodes a raw chunk according to its compressor config.
func Compress(cfg *CompressorConfig, data []byte) ([]byte, error) {
	if cfg == nil {
		return data, nil
	}
	switch cfg.ID {
	case CompressorZstd:
		opts := []zstd.EOption{}
		if cfg.Level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(cfg.Level)))
		}
		encoder, err := zstd.NewWriter(nil, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		defer encoder.Close()
		return encoder.EncodeAll(data, nil), nil
	case CompressorZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, compressionLevel(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("failed to init zlib writer: %w", err)
		}
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("failed to compress zlib chunk: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("failed to flush zlib chunk: %w", err)
		}
		return buf.Bytes(), nil
	case CompressorGzip:
		var buf bytes.Buffer
		gw, err := gzip.NewWriterLevel(&buf, compressionLevel(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("failed to init gzip writer: %w", err)
		}
		if _, err := gw.Write(data); err != nil {
			return nil, fmt.Errorf("failed to compress gzip chunk: %w", err)
		}
		if err := gw.Close(); err != nil {
			return nil, fmt.Errorf("failed to flush gzip chunk: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compressor: %s", cfg.ID)
	}
}

// compressionLevel maps the numcodecs level (0 = library default) to flate levels.
func compressionLevel(level int) int {
	if level <= 0 || level > 9 {
		return zlib.DefaultCompression
	}
	return level
}
