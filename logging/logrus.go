package logging

import "github.com/sirupsen/logrus"

// LogrusAdapter wraps *logrus.Logger to implement the Logger interface, for
// applications already standardized on logrus. Key/value argument pairs are
// mapped to logrus fields.
type LogrusAdapter struct {
	logger *logrus.Logger
}

// NewLogrusAdapter creates a Logger from *logrus.Logger.
func NewLogrusAdapter(logger *logrus.Logger) *LogrusAdapter {
	return &LogrusAdapter{logger: logger}
}

func (l *LogrusAdapter) fields(args []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields[key] = args[i+1]
	}
	return fields
}

// Debug logs a debug message.
func (l *LogrusAdapter) Debug(msg string, args ...any) {
	l.logger.WithFields(l.fields(args)).Debug(msg)
}

// Info logs an informational message.
func (l *LogrusAdapter) Info(msg string, args ...any) {
	l.logger.WithFields(l.fields(args)).Info(msg)
}

// Warn logs a warning message.
func (l *LogrusAdapter) Warn(msg string, args ...any) {
	l.logger.WithFields(l.fields(args)).Warn(msg)
}

// Error logs an error message.
func (l *LogrusAdapter) Error(msg string, args ...any) {
	l.logger.WithFields(l.fields(args)).Error(msg)
}
