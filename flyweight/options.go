package flyweight

import "fmt"

// HeaderLayout selects the header variant.
type HeaderLayout uint8

const (
	// SingleHeader stores the record count only.
	SingleHeader HeaderLayout = iota
	// DualHeader also caches the exclusive end offset of the last record.
	DualHeader
)

// Width returns the header size in bytes.
func (h HeaderLayout) Width() int64 {
	if h == DualHeader {
		return 16
	}
	return 8
}

func (h HeaderLayout) String() string {
	if h == DualHeader {
		return "dual"
	}
	return "single"
}

// ParseHeaderLayout maps "single" and "dual" to a HeaderLayout.
func ParseHeaderLayout(s string) (HeaderLayout, error) {
	switch s {
	case "single", "":
		return SingleHeader, nil
	case "dual":
		return DualHeader, nil
	default:
		return 0, fmt.Errorf("flyweight: unknown header layout %q", s)
	}
}

type options struct {
	header   HeaderLayout
	capacity int64
}

// Option configures a FlyWeight.
type Option func(*options)

// WithHeader selects the header layout. The default is SingleHeader.
func WithHeader(h HeaderLayout) Option {
	return func(o *options) {
		o.header = h
	}
}

// WithInitialCapacity reserves room for n records on creation.
func WithInitialCapacity(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
