// Package telemetry wires optional Sentry error tracking. With no DSN
// configured every call here is a no-op.
package telemetry

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init initializes the Sentry SDK. Call once at process startup. An empty
// dsn disables Sentry entirely, which is not an error.
func Init(dsn, release string) error {
	if dsn == "" {
		return nil
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	return nil
}

// CaptureError reports err with the given tags. Safe to call when Sentry is
// disabled.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush drains buffered events on shutdown.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
