// Package logging provides the structured logger shared by every package.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingConfig mirrors the logging section of config.yaml.
type LoggingConfig struct {
	Level      string
	Format     string
	Output     string
	FilePrefix string
}

// Logger is a logrus logger that stamps every entry with the owning service.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a logger writing to stdout.
func New(service, level, format string) *Logger {
	return NewFromConfig(service, LoggingConfig{Level: level, Format: format})
}

// NewDefault creates an info-level text logger.
func NewDefault(service string) *Logger {
	return New(service, "info", "text")
}

// NewFromConfig creates a logger from the logging config section. An
// unusable file output falls back to stdout.
func NewFromConfig(service string, cfg LoggingConfig) *Logger {
	base := logrus.New()

	lvl, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	if strings.EqualFold(cfg.Format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out, openErr := openOutput(cfg)
	base.SetOutput(out)
	base.AddHook(serviceHook{service: service})

	l := &Logger{Logger: base, service: service}
	if openErr != nil {
		l.WithError(openErr).Warn("log file unavailable, using stdout")
	}
	return l
}

func openOutput(cfg LoggingConfig) (io.Writer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	case "file":
		prefix := cfg.FilePrefix
		if prefix == "" {
			prefix = "wareledger"
		}
		name := fmt.Sprintf("%s-%s.log", prefix, time.Now().Format("20060102"))
		if dir := filepath.Dir(name); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return os.Stdout, err
			}
		}
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return os.Stdout, err
		}
		return f, nil
	default:
		return os.Stdout, fmt.Errorf("unknown log output %q", cfg.Output)
	}
}

// Service returns the service name stamped on entries.
func (l *Logger) Service() string { return l.service }

// WithContext returns an entry carrying the trace and user found in ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(l.Logger)
	if ctx == nil {
		return entry
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}
	if userID := GetUserID(ctx); userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	if role := GetRole(ctx); role != "" {
		entry = entry.WithField("role", role)
	}
	return entry.WithContext(ctx)
}

// WithFields accepts a plain map so callers need not import logrus.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields(fields))
}

// LogRequest records a completed HTTP request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	})
	switch {
	case status >= 500:
		entry.Error("request failed")
	case status >= 400:
		entry.Warn("request rejected")
	default:
		entry.Info("request completed")
	}
}

// LogSecurityEvent records authentication and throttling decisions.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, fields map[string]interface{}) {
	l.WithContext(ctx).
		WithFields(logrus.Fields(fields)).
		WithField("security_event", event).
		Warn("security event")
}

type serviceHook struct {
	service string
}

func (h serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok && h.service != "" {
		entry.Data["service"] = h.service
	}
	return nil
}
