package region

import (
	"github.com/hupe1980/flystore/mem"
)

// Strings stores UTF-8 strings as length-prefixed blocks of a MemoryRegion.
// Each string takes exactly 2+len(s) bytes.
type Strings struct {
	r *MemoryRegion
}

// NewStrings returns a string pool over r.
func NewStrings(r *MemoryRegion) *Strings {
	return &Strings{r: r}
}

// Region returns the underlying allocator.
func (s *Strings) Region() *MemoryRegion { return s.r }

// Put stores v and returns its handle with retain count 1.
func (s *Strings) Put(v string) (Handle, error) {
	if len(v) > 0xFFFF {
		return Null, mem.ErrStringTooLong
	}
	h, err := s.r.Malloc(2 + int64(len(v)))
	if err != nil {
		return Null, err
	}
	if _, err := s.r.WriteUTF8At(h, 0, v); err != nil {
		_ = s.r.Free(h)
		return Null, err
	}
	return h, nil
}

// Get returns the string stored under h.
func (s *Strings) Get(h Handle) (string, error) {
	if err := s.r.validate(h); err != nil {
		return "", err
	}
	return s.r.ReadUTF8At(h, 0)
}

// Retain increments the retain count of h.
func (s *Strings) Retain(h Handle) error { return s.r.Retain(h) }

// Free decrements the retain count of h.
func (s *Strings) Free(h Handle) error { return s.r.Free(h) }
