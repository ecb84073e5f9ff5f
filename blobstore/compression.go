package blobstore

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the stream compression applied to cached artifacts.
type Compression uint8

const (
	// CompressionNone stores artifacts uncompressed.
	CompressionNone Compression = iota
	// CompressionLZ4 uses LZ4 framing (fast, moderate ratio).
	CompressionLZ4
	// CompressionZstd uses Zstandard (better ratio, still fast).
	CompressionZstd
)

// ParseCompression maps a textual name to a Compression value.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return CompressionNone, fmt.Errorf("blobstore: unknown compression %q", name)
	}
}

// String returns the stable textual name, suitable for manifests.
func (c Compression) String() string {
	switch c {
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Compress wraps w so that writes are compressed. The returned writer
// must be closed to flush the final frame; closing it does not close w.
func (c Compression) Compress(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	default:
		return nil, fmt.Errorf("blobstore: unknown compression %d", c)
	}
}

// Decompress wraps r so that reads are decompressed.
func (c Compression) Decompress(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("blobstore: unknown compression %d", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
