package core

// Logger is the app-wide logging contract.
// Args may carry extra context values; a session.Identity arg identifies the
// acting user to implementations that report it.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
