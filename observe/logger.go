package observe

import "go.uber.org/zap"

// NewLogger returns a production zap logger. Falls back to a no-op
// logger if construction fails.
func NewLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// NewDevelopmentLogger returns a human-readable development logger.
func NewDevelopmentLogger() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
