// Package seclog is the structured security/audit logger. Every record is
// appended to a size-rotated JSON log file; when audit mode is on it is
// also written to the security_events table. Logging never fails the
// request that triggered it: storage errors are reported on a fallback
// stream and swallowed.
package seclog

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Metadata is the free-form key/value payload attached to an event. The
// keys "user_id" and "ip" are lifted into dedicated columns.
type Metadata map[string]string

// Event is an immutable security record.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Severity  Severity  `json:"severity"`
	UserID    string    `json:"user_id,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}

// EventStore is the durable sink used when audit logging is enabled.
type EventStore interface {
	Insert(ctx context.Context, ev *Event) error
	Stats(ctx context.Context, since time.Time) (map[Severity]int64, error)
	Recent(ctx context.Context, limit int) ([]Event, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config controls the file sink and audit behavior.
type Config struct {
	FilePath     string
	MaxSizeMB    int
	Audit        bool
	StoreTimeout time.Duration
}

// Logger owns the append-only security log. Safe for concurrent use.
type Logger struct {
	file         *lumberjack.Logger
	zl           *zap.Logger
	store        EventStore
	audit        bool
	storeTimeout time.Duration
	fallback     io.Writer

	mu       sync.Mutex
	counters map[string]int64
}

// New builds a Logger writing to cfg.FilePath. store may be nil when audit
// mode is disabled.
func New(cfg Config, store EventStore) *Logger {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 2 * time.Second
	}

	file := &lumberjack.Logger{
		Filename: cfg.FilePath,
		MaxSize:  cfg.MaxSizeMB,
		Compress: true,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), zapcore.InfoLevel)

	return &Logger{
		file:         file,
		zl:           zap.New(core),
		store:        store,
		audit:        cfg.Audit && store != nil,
		storeTimeout: cfg.StoreTimeout,
		fallback:     os.Stderr,
		counters:     make(map[string]int64),
	}
}

// Log records a security event. It derives severity from the static
// event-type table, appends to the log file, and writes through to the
// durable store when audit mode is enabled. It never returns an error.
func (l *Logger) Log(eventType string, md Metadata) {
	ev := &Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Severity:  SeverityOf(eventType),
		Metadata:  md,
	}
	if md != nil {
		ev.UserID = md["user_id"]
		ev.IP = md["ip"]
	}

	l.mu.Lock()
	l.counters[eventType]++
	l.mu.Unlock()

	fields := []zap.Field{
		zap.String("event_type", ev.EventType),
		zap.String("severity", string(ev.Severity)),
	}
	if ev.UserID != "" {
		fields = append(fields, zap.String("user_id", ev.UserID))
	}
	if ev.IP != "" {
		fields = append(fields, zap.String("ip", ev.IP))
	}
	if len(md) > 0 {
		fields = append(fields, zap.Any("metadata", md))
	}
	l.zl.Info("security event", fields...)

	if l.audit {
		ctx, cancel := context.WithTimeout(context.Background(), l.storeTimeout)
		defer cancel()
		if err := l.store.Insert(ctx, ev); err != nil {
			fmt.Fprintf(l.fallback, "seclog: audit store write failed: %v\n", err)
		}
	}
}

// Rotate renames and compresses the active log file and starts a fresh
// one. Size-based rotation also happens automatically on write.
func (l *Logger) Rotate() error {
	return l.file.Rotate()
}

// Stats aggregates stored event counts by severity for the given
// timeframe ("1h", "24h", "7d", "30d"; anything else means 24h).
func (l *Logger) Stats(ctx context.Context, timeframe string) (map[Severity]int64, error) {
	if !l.audit {
		return map[Severity]int64{}, nil
	}

	var hours int
	switch timeframe {
	case "1h":
		hours = 1
	case "7d":
		hours = 24 * 7
	case "30d":
		hours = 24 * 30
	default:
		hours = 24
	}

	return l.store.Stats(ctx, time.Now().UTC().Add(-time.Duration(hours)*time.Hour))
}

// RecentEvents returns the newest stored events, newest first.
func (l *Logger) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	if !l.audit {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return l.store.Recent(ctx, limit)
}

// Cleanup deletes stored events older than the retention window.
func (l *Logger) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if !l.audit {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return l.store.DeleteOlderThan(ctx, cutoff)
}

// snapshotAndReset hands the current per-type counters to the alerter and
// zeroes them. The lock is held only for the copy.
func (l *Logger) snapshotAndReset() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.counters
	l.counters = make(map[string]int64)
	return snap
}

// Close flushes and closes the file sink.
func (l *Logger) Close() error {
	_ = l.zl.Sync()
	return l.file.Close()
}
