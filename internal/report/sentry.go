package report

import (
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// SetupSentry initializes the Sentry client from the SENTRY_DSN environment
// variable. With an empty DSN the client is a no-op, so local runs work
// without any Sentry account.
func SetupSentry() {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              os.Getenv("SENTRY_DSN"),
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	}); err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	sentry.CaptureMessage("Bus monitor started")
}

// FlushSentry waits for buffered events to be delivered before shutdown.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
