// Package logging builds the application's logrus logger and the echo
// middleware that attaches a request-scoped entry to every request.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const ctxKey = "logger"

// New returns a logger writing to stdout.  format is "json" or "text";
// unknown levels fall back to info.
func New(level, format string) *logrus.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(w io.Writer, level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// Middleware stores an entry tagged with the request id, method and route in
// the echo context and logs one line when the request completes.  It must be
// registered after echo's RequestID middleware.
func Middleware(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			entry := log.WithFields(logrus.Fields{
				"request_id": rid,
				"method":     req.Method,
				"path":       req.URL.Path,
			})
			c.Set(ctxKey, entry)

			err := next(c)
			if err != nil {
				c.Error(err) // let echo write the response so the status below is final
			}

			fields := logrus.Fields{
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"remote_ip":  c.RealIP(),
			}
			if uid := c.Get("user_id"); uid != nil {
				fields["user_id"] = uid
			}
			done := entry.WithFields(fields)
			switch {
			case c.Response().Status >= 500:
				done.Error("request failed")
			case c.Response().Status >= 400:
				done.Warn("request rejected")
			default:
				done.Info("request completed")
			}
			return nil
		}
	}
}

// From returns the request-scoped entry, or a standard-logger entry when the
// middleware did not run (e.g. in unit tests).
func From(c echo.Context) *logrus.Entry {
	if e, ok := c.Get(ctxKey).(*logrus.Entry); ok && e != nil {
		return e
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
