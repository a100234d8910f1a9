package core

// Logger is implemented by the logging services (rollbar, std).
// args may contain errors, structured maps or a guardian for person tracking.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
