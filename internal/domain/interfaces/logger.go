// Package interfaces defines core domain contracts.
//
//nolint:revive // Package name 'interfaces' is intentional for domain layer
package interfaces

// Logger is the structured logger the domain and adapters write to.
// Implementations live in external-adapters.
type Logger interface {
	// Debug logs debug-level messages
	Debug(msg string, fields ...Field)

	// Info logs informational messages
	Info(msg string, fields ...Field)

	// Warn logs warning messages
	Warn(msg string, fields ...Field)

	// Error logs error messages
	Error(msg string, fields ...Field)
}

// Field is a key/value pair attached to a log line
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Err wraps an error as the conventional "error" field
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// NoOpLogger discards everything. Pure library callers and tests use it.
type NoOpLogger struct{}

// Debug discards the message
func (n *NoOpLogger) Debug(_ string, _ ...Field) {}

// Info discards the message
func (n *NoOpLogger) Info(_ string, _ ...Field) {}

// Warn discards the message
func (n *NoOpLogger) Warn(_ string, _ ...Field) {}

// Error discards the message
func (n *NoOpLogger) Error(_ string, _ ...Field) {}

// OrNoOp returns l, or a NoOpLogger when l is nil
func OrNoOp(l Logger) Logger {
	if l == nil {
		return &NoOpLogger{}
	}
	return l
}
