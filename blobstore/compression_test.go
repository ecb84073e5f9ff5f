package blobstore

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("probability maps compress well "), 1024)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := c.Compress(&buf)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			if c != CompressionNone {
				assert.Less(t, buf.Len(), len(payload))
			}

			r, err := c.Decompress(&buf)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, payload, got)
		})
	}
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]Compression{
		"":     CompressionNone,
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZstd,
	} {
		got, err := ParseCompression(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseCompression("lzf")
	require.Error(t, err)
}
