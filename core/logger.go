package core

// Logger is the logging service used by every component.
// args may hold errors, maps of extra data, or an Actor.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor identifies who triggered a logged event.
type Actor interface {
	ActorInfo() (id, name, email string)
}
