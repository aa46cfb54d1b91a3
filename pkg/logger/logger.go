package logger

import "go.uber.org/zap"

// Component returns base scoped to a named component. A nil base yields a
// no-op logger.
func Component(base *zap.Logger, component string) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(component).With(zap.String("component", component))
}
