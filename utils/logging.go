package utils

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

func withFields(key, value string, extra map[string]interface{}) *logrus.Entry {
	fields := make(logrus.Fields, len(extra)+1)
	for k, v := range extra {
		fields[k] = v
	}
	fields[key] = value
	return logrus.WithFields(fields)
}

// LogError records a failure at error level and captures it in Sentry,
// tagged with errorType.
func LogError(errorType string, err error, context map[string]interface{}) {
	withFields("error_type", errorType, context).
		WithField("error", err.Error()).
		Error("Error occurred")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		scope.SetExtras(context)
		sentry.CaptureException(err)
	})
}

// LogEvent records a notable event at info level. Sentry keeps it as a
// breadcrumb for the next captured error.
func LogEvent(eventType string, data map[string]interface{}) {
	withFields("event_type", eventType, data).Info("Event occurred")

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// InitSentry configures the Sentry client. An empty DSN leaves Sentry disabled
// and every capture becomes a no-op.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

// FlushSentry waits for buffered events to be delivered.
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}
