package download

import (
	"fmt"
	"net/http"

	"github.com/kodi-tools/addonupdate/internal/ui"
)

// DefaultBlockSize is the number of bytes read per iteration.
// Cancellation is polled once per block.
const DefaultBlockSize = 8192

// Option defines a functional option for configuring a Downloader.
type Option func(*Options) error

// Options contains optional configuration for the Downloader.
type Options struct {
	client    *http.Client
	progress  ui.ProgressFactory
	blockSize int
	translate ui.Translator
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{
		client:    http.DefaultClient,
		progress:  ui.Noop{},
		blockSize: DefaultBlockSize,
		translate: ui.Untranslated,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithHTTPClient sets the client used for the streaming GET.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) error {
		if c == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		o.client = c
		return nil
	}
}

// WithProgress sets where progress dialogs come from.
func WithProgress(p ui.ProgressFactory) Option {
	return func(o *Options) error {
		if p == nil {
			return fmt.Errorf("progress factory cannot be nil")
		}
		o.progress = p
		return nil
	}
}

// WithBlockSize overrides DefaultBlockSize.
func WithBlockSize(n int) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("block size must be positive, got %d", n)
		}
		o.blockSize = n
		return nil
	}
}

// WithTranslator sets the message translator.
func WithTranslator(t ui.Translator) Option {
	return func(o *Options) error {
		if t == nil {
			return fmt.Errorf("translator cannot be nil")
		}
		o.translate = t
		return nil
	}
}
