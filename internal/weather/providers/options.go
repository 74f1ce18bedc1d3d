package providers

import "strings"

type options struct {
	baseURL string
	backoff BackoffConfig
}

// Option customizes an adapter.
type Option func(*options)

// WithBaseURL points an adapter at a different host, e.g. a test server or a proxy.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimRight(u, "/")
	}
}

// WithBackoff overrides DefaultBackoff.
func WithBackoff(b BackoffConfig) Option {
	return func(o *options) {
		o.backoff = b
	}
}

func applyOptions(defaultBaseURL string, opts []Option) options {
	o := options{baseURL: defaultBaseURL, backoff: DefaultBackoff}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
