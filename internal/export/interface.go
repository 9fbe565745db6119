package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/govchat/internal"
	"github.com/iksnae/govchat/internal/content"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(chat *internal.ChatData, w io.Writer) error
	Extension() string
}

// options shared by the exporters that render message text
type options struct {
	resolver *content.Resolver
	brand    internal.Brand
}

// Option configures an exporter
type Option func(*options)

// WithResolver sets the resolver used to build reference links
func WithResolver(r *content.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithBrand sets the brand used for titles and colors
func WithBrand(b internal.Brand) Option {
	return func(o *options) { o.brand = b }
}

// Formats lists the supported export formats
var Formats = []string{"jsonl", "json", "yaml", "md", "html"}

// NewExporter creates a new exporter based on format
func NewExporter(format string, opts ...Option) (Exporter, error) {
	o := options{resolver: content.DefaultResolver()}
	if b, ok := internal.LookupBrand(internal.BrandCow); ok {
		o.brand = b
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(format) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{opts: o}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "html":
		return &HTMLExporter{opts: o}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}
