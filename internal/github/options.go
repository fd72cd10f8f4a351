package github

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultRawBaseURL serves raw repository files.
	DefaultRawBaseURL = "https://raw.githubusercontent.com"

	// DefaultWebBaseURL serves branch archives.
	DefaultWebBaseURL = "https://github.com"

	// DefaultTimeout bounds every request made with the default HTTP client.
	DefaultTimeout = 10 * time.Minute

	// pageSize is the per_page value used for every paged API listing.
	pageSize = 100
)

// Option defines a functional option for configuring Client.
type Option func(*Options) error

// Options contains optional configuration for the Client.
type Options struct {
	httpClient *http.Client
	timeout    time.Duration
	token      string
	rawBaseURL string
	webBaseURL string
	apiBaseURL string
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{
		timeout:    DefaultTimeout,
		rawBaseURL: DefaultRawBaseURL,
		webBaseURL: DefaultWebBaseURL,
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

// WithHTTPClient sets the client used for every request (e.g. in tests).
// A token configured with WithToken is layered over its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *Options) error {
		if hc == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		o.httpClient = hc
		return nil
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		o.timeout = d
		return nil
	}
}

// WithToken authenticates API requests with a personal access token.
func WithToken(token string) Option {
	return func(o *Options) error {
		o.token = strings.TrimSpace(token)
		return nil
	}
}

// WithRawBaseURL overrides DefaultRawBaseURL.
func WithRawBaseURL(u string) Option {
	return func(o *Options) error {
		v, err := normalizeBaseURL(u)
		if err != nil {
			return err
		}
		o.rawBaseURL = v
		return nil
	}
}

// WithWebBaseURL overrides DefaultWebBaseURL.
func WithWebBaseURL(u string) Option {
	return func(o *Options) error {
		v, err := normalizeBaseURL(u)
		if err != nil {
			return err
		}
		o.webBaseURL = v
		return nil
	}
}

// WithAPIBaseURL points the client at a GitHub Enterprise API endpoint.
func WithAPIBaseURL(u string) Option {
	return func(o *Options) error {
		v, err := normalizeBaseURL(u)
		if err != nil {
			return err
		}
		o.apiBaseURL = v
		return nil
	}
}

func normalizeBaseURL(u string) (string, error) {
	u = strings.TrimSpace(u)
	if u == "" {
		return "", fmt.Errorf("base URL cannot be empty")
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("invalid base URL '%s': %w", u, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("base URL '%s' must use http or https", u)
	}

	return strings.TrimSuffix(u, "/"), nil
}
