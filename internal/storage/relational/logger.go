package relational

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// slogAdapter routes gorm's logger onto slog. Queries log at debug level.
type slogAdapter struct {
	logger *slog.Logger
}

func newLogger(l *slog.Logger) gormlogger.Interface {
	if l == nil {
		l = slog.Default()
	}
	return &slogAdapter{logger: l.With("component", "gorm")}
}

func (l *slogAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *slogAdapter) Info(ctx context.Context, s string, args ...interface{}) {
	l.logger.InfoContext(ctx, fmt.Sprintf(s, args...))
}

func (l *slogAdapter) Warn(ctx context.Context, s string, args ...interface{}) {
	l.logger.WarnContext(ctx, fmt.Sprintf(s, args...))
}

func (l *slogAdapter) Error(ctx context.Context, s string, args ...interface{}) {
	l.logger.ErrorContext(ctx, fmt.Sprintf(s, args...))
}

func (l *slogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, rows := fc()
	attrs := []any{"sql", sql, "rows", rows, "duration", time.Since(begin)}

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		l.logger.ErrorContext(ctx, "[GORM] query error", append(attrs, "error", err)...)
		return
	}
	l.logger.DebugContext(ctx, "[GORM] query", attrs...)
}
