package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type loggerKey struct{}
type eventKey struct{}

// event accumulates the fields of a request's canonical log line.
type event struct {
	sync.Mutex
	fields []zap.Field
}

func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger carried by ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}

	return zap.NewNop()
}

// WithEvent starts collecting fields for the canonical log line of a request.
func WithEvent(ctx context.Context) context.Context {
	return context.WithValue(ctx, eventKey{}, &event{})
}

// With returns a context whose logger carries the additional fields. The fields are also
// added to the canonical log line, if the context has one.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	if e, ok := ctx.Value(eventKey{}).(*event); ok {
		e.Lock()
		e.fields = append(e.fields, fields...)
		e.Unlock()
	}

	return ContextWithLogger(ctx, FromContext(ctx).With(fields...))
}

// EventFields returns the fields added with With since WithEvent.
func EventFields(ctx context.Context) []zap.Field {
	e, ok := ctx.Value(eventKey{}).(*event)
	if !ok {
		return nil
	}

	e.Lock()
	defer e.Unlock()

	return append([]zap.Field(nil), e.fields...)
}
