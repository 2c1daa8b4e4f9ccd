// Package memory is a map based sharing backend for tests and embedding.
package memory

import (
	"log/slog"
	"time"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/sharing"
)

type options struct {
	logger          *slog.Logger
	calendarRoot    string
	principalPrefix string
	now             func() time.Time
}

func defaultOptions() options {
	return options{
		logger:          logging.Discard(),
		calendarRoot:    sharing.DefaultCalendarRoot,
		principalPrefix: sharing.DefaultPrincipalPrefix,
		now:             time.Now,
	}
}

// Option represents a configuration option for the Backend and Directory
type Option func(*options)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCalendarRoot sets the collection prefix used for host and shared URLs.
func WithCalendarRoot(root string) Option {
	return func(o *options) {
		o.calendarRoot = root
	}
}

// WithPrincipalPrefix sets the namespace invite addresses are resolved in.
func WithPrincipalPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.principalPrefix = prefix
		}
	}
}

// WithClock replaces time.Now for notification stamps and publications.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
