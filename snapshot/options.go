package snapshot

import (
	"log/slog"

	"github.com/hupe1980/flystore/codec"
	"github.com/hupe1980/flystore/internal/resource"
)

type options struct {
	compression Compression
	codec       codec.Codec
	rc          *resource.Controller
	logger      *slog.Logger
}

// Option configures Write and Read.
type Option func(*options)

// WithCompression selects the payload compression. The default is zstd.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec sets the manifest codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = codec.OrDefault(c)
	}
}

// WithResourceController paces frame I/O against the controller's IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		compression: CompressionZstd,
		codec:       codec.Default,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
