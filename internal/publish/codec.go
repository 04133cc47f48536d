// Package publish persists rendered index files: compressed into a
// directory, packed into a tar archive, or uploaded to an S3-compatible
// bucket.
package publish

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression names a file compression format.
type Compression string

const (
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	CompressionNone Compression = "none"
)

// ParseCompression validates a compression name. Empty means gzip, which
// is what the static search client reads.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionGzip:
		return CompressionGzip, nil
	case CompressionZstd, CompressionNone:
		return Compression(s), nil
	}
	return "", fmt.Errorf("unknown compression %q", s)
}

// Ext returns the file name suffix added by the compression.
func (c Compression) Ext() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	}
	return ""
}

// NewWriter wraps w so that writes are compressed. Close flushes the
// compressed stream but does not close w.
func (c Compression) NewWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		return gz, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, err
		}
		return enc, nil
	case CompressionNone:
		return nopCloser{w}, nil
	}
	return nil, fmt.Errorf("unknown compression %q", c)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// compress writes data to w, compressed with c.
func compress(c Compression, data []byte, w io.Writer) error {
	cw, err := c.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := cw.Write(data); err != nil {
		cw.Close()
		return fmt.Errorf("compressing: %w", err)
	}
	return cw.Close()
}
