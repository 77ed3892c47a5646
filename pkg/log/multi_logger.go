package log

// MultiLogger fans each event out to several loggers, typically a
// FileLogger for later inspection plus a SlogAdapter for live output.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a logger delivering every event to all of the
// given loggers in order.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log delivers the event to every configured logger.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
