package publish

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/iiab/staticsearch"
)

// Sink receives rendered index files.
type Sink interface {
	Put(ctx context.Context, f staticsearch.File) error
	Close() error
}

// Publish hands every file to every sink, in order.
func Publish(ctx context.Context, files []staticsearch.File, sinks ...Sink) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, s := range sinks {
			if err := s.Put(ctx, f); err != nil {
				return fmt.Errorf("publishing %s: %w", f.Name, err)
			}
		}
	}
	return nil
}

// DirSink writes each file, compressed, into a directory.
type DirSink struct {
	dir         string
	compression Compression
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string, c Compression) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &DirSink{dir: dir, compression: c}, nil
}

// Put writes f as <dir>/<name><ext>.
func (s *DirSink) Put(_ context.Context, f staticsearch.File) error {
	var buf bytes.Buffer
	if err := compress(s.compression, f.Content, &buf); err != nil {
		return err
	}
	p := filepath.Join(s.dir, f.Name+s.compression.Ext())
	if err := os.WriteFile(p, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// Close is a no-op.
func (s *DirSink) Close() error { return nil }

// ArchiveSink packs compressed files into a single .tar.gz under a root
// directory inside the archive.
type ArchiveSink struct {
	path        string
	root        string
	compression Compression
	modTime     time.Time

	file *os.File
	gz   *gzip.Writer
	tw   *tar.Writer
}

// NewArchiveSink creates the archive at p. Entries are stored as
// root/<name><ext> with modTime, so equal inputs give equal archives.
func NewArchiveSink(p, root string, c Compression, modTime time.Time) (*ArchiveSink, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	fi, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("creating archive %s: %w", p, err)
	}
	gz := gzip.NewWriter(fi)
	return &ArchiveSink{
		path:        p,
		root:        root,
		compression: c,
		modTime:     modTime,
		file:        fi,
		gz:          gz,
		tw:          tar.NewWriter(gz),
	}, nil
}

// Path returns the archive location on disk.
func (s *ArchiveSink) Path() string { return s.path }

// Put appends f to the archive.
func (s *ArchiveSink) Put(_ context.Context, f staticsearch.File) error {
	var buf bytes.Buffer
	if err := compress(s.compression, f.Content, &buf); err != nil {
		return err
	}
	hdr := &tar.Header{
		Name:    path.Join(s.root, f.Name+s.compression.Ext()),
		Mode:    0644,
		Size:    int64(buf.Len()),
		ModTime: s.modTime,
		Format:  tar.FormatPAX,
	}
	if err := s.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing tar header: %w", err)
	}
	if _, err := s.tw.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing tar entry: %w", err)
	}
	return nil
}

// Close finishes the tar and gzip streams and closes the file.
func (s *ArchiveSink) Close() error {
	if err := s.tw.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("closing tar: %w", err)
	}
	if err := s.gz.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("closing gzip: %w", err)
	}
	return s.file.Close()
}

// ArchiveName returns the dated archive name used for releases, e.g.
// static-search.2025-12-10.pop-1k-cities.tar.gz.
func ArchiveName(t time.Time) string {
	return fmt.Sprintf("static-search.%s.pop-1k-cities.tar.gz", t.Format("2006-01-02"))
}
