package ports

// Logger defines the diagnostic output interface for the helper tools.
// Messages are prefixed with the invoking tool's name by the implementation.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Debug logs a message shown only in verbose mode.
	Debug(msg string)

	// Info logs an informational message.
	Info(msg string)

	// Warn logs a non-fatal warning.
	Warn(msg string)

	// WarnOnce logs a warning at most once per key for the lifetime of the
	// logger. Used for deprecation warnings that fire on hot paths.
	WarnOnce(key, msg string)

	// Error logs a fatal error before the tool exits non-zero.
	Error(err error)
}
