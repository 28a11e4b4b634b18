package csvfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression selects the codec applied to a CSV file.
type Compression int

const (
	// CompressionAuto picks the codec from the file extension.
	CompressionAuto Compression = iota
	// CompressionNone reads and writes plain text.
	CompressionNone
	// CompressionGzip uses gzip (.gz).
	CompressionGzip
	// CompressionZstd uses zstandard (.zst).
	CompressionZstd
	// CompressionXZ uses xz (.xz).
	CompressionXZ
)

// File extensions for supported compression codecs.
const (
	extGzip = ".gz"
	extZstd = ".zst"
	extXZ   = ".xz"
)

// String returns the codec name.
func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionXZ:
		return "xz"
	default:
		return "unknown"
	}
}

// Extension returns the file extension for this codec.
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return extGzip
	case CompressionZstd:
		return extZstd
	case CompressionXZ:
		return extXZ
	default:
		return ""
	}
}

// ParseCompression maps a codec name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return CompressionAuto, nil
	case "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "xz":
		return CompressionXZ, nil
	default:
		return CompressionNone, fmt.Errorf("unsupported compression %q (expected auto, none, gzip, zstd or xz)", name)
	}
}

// DetectCompression detects the codec from a file path.
func DetectCompression(path string) Compression {
	path = strings.ToLower(path)

	switch {
	case strings.HasSuffix(path, extGzip):
		return CompressionGzip
	case strings.HasSuffix(path, extZstd):
		return CompressionZstd
	case strings.HasSuffix(path, extXZ):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// Resolve replaces CompressionAuto with the codec detected from path.
func (c Compression) Resolve(path string) Compression {
	if c == CompressionAuto {
		return DetectCompression(path)
	}
	return c
}

// readCloser chains a decompressing reader with the cleanups of every layer under it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// writeCloser closes the codec before the file so trailers are flushed.
type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	var firstErr error
	for _, c := range w.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open opens path for reading, decompressing according to its extension.
// An empty compressed file reads as empty input.
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path) //nolint:gosec // caller-supplied CSV path
	if err != nil {
		return nil, err
	}

	codec := DetectCompression(path)
	if codec != CompressionNone {
		// A zero-byte file has no codec header; read it as empty input.
		info, err := file.Stat()
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		if info.Size() == 0 {
			return file, nil
		}
	}

	switch codec {
	case CompressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &readCloser{Reader: gz, closers: []func() error{gz.Close, file.Close}}, nil

	case CompressionZstd:
		dec, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return &readCloser{Reader: dec, closers: []func() error{func() error { dec.Close(); return nil }, file.Close}}, nil

	case CompressionXZ:
		xr, err := xz.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return &readCloser{Reader: xr, closers: []func() error{file.Close}}, nil

	default:
		return file, nil
	}
}

// Create creates path for writing through the given codec.
func Create(path string, c Compression) (io.WriteCloser, error) {
	file, err := os.Create(path) //nolint:gosec // caller-supplied CSV path
	if err != nil {
		return nil, err
	}

	switch c.Resolve(path) {
	case CompressionGzip:
		gz := gzip.NewWriter(file)
		return &writeCloser{Writer: gz, closers: []func() error{gz.Close, file.Close}}, nil

	case CompressionZstd:
		enc, err := zstd.NewWriter(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return &writeCloser{Writer: enc, closers: []func() error{enc.Close, file.Close}}, nil

	case CompressionXZ:
		xw, err := xz.NewWriter(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return &writeCloser{Writer: xw, closers: []func() error{xw.Close, file.Close}}, nil

	default:
		return file, nil
	}
}
