package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Load reads a catalog file, transparently decompressing gzip content.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a catalog stream, which may be gzip-compressed.
func Read(r io.Reader) (*Catalog, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(gzipMagic))
	if !bytes.Equal(head, gzipMagic) {
		return Parse(br)
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open gzip catalog: %w", err)
	}
	defer zr.Close()
	return Parse(zr)
}

// Source loads a catalog file on first use and shares it afterwards.
type Source struct {
	load func() (*Catalog, error)

	once    sync.Once
	catalog *Catalog
	err     error
}

// NewSource returns a lazy source for the file at path.
func NewSource(path string) *Source {
	return &Source{load: func() (*Catalog, error) { return Load(path) }}
}

// StaticSource wraps an already parsed catalog.
func StaticSource(c *Catalog) *Source {
	return &Source{load: func() (*Catalog, error) { return c, nil }}
}

// Catalog returns the shared catalog, loading it on the first call.
func (s *Source) Catalog() (*Catalog, error) {
	s.once.Do(func() {
		s.catalog, s.err = s.load()
	})
	return s.catalog, s.err
}
