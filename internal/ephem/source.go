package ephem

import (
	"fmt"
	"io"
	"sync"
)

// Config selects and locates an ephemeris provider.
type Config struct {
	Mode Mode
	Path string // VSOP87 data directory or DE kernel file
}

// Open constructs the provider described by cfg.
func Open(cfg Config) (Provider, error) {
	switch cfg.Mode {
	case ModeAnalytic:
		return NewAnalyticProvider(), nil
	case ModeVSOP87:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: vsop87 needs a data directory", ErrEphemerisUnavailable)
		}
		return NewVSOP87Provider(cfg.Path)
	case ModeJPL:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: jpl needs a kernel file", ErrEphemerisUnavailable)
		}
		return NewJPLProvider(cfg.Path)
	case ModeHorizons:
		return NewHorizonsProvider(), nil
	default:
		return nil, fmt.Errorf("%w: mode %d", ErrEphemerisUnavailable, cfg.Mode)
	}
}

// Source opens a provider on first use and shares it afterwards.
// A failed open is remembered and returned to every caller.
type Source struct {
	open func() (Provider, error)

	once     sync.Once
	provider Provider
	err      error
}

// NewSource returns a lazy source for cfg.
func NewSource(cfg Config) *Source {
	return &Source{open: func() (Provider, error) { return Open(cfg) }}
}

// StaticSource wraps an already constructed provider.
func StaticSource(p Provider) *Source {
	return &Source{open: func() (Provider, error) { return p, nil }}
}

// Provider returns the shared provider, opening it on the first call.
func (s *Source) Provider() (Provider, error) {
	s.once.Do(func() {
		s.provider, s.err = s.open()
	})
	return s.provider, s.err
}

// Close releases the provider if it was opened and holds resources.
// It must not race with Provider.
func (s *Source) Close() error {
	if c, ok := s.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
