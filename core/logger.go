package core

// Logger is the app-wide leveled logger. Implementations may forward
// entries to an error tracking service; args may carry an error, extra
// context maps or the acting user for such services.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
