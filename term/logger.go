package term

import "fmt"

// Logger displays the debugging information of the components at a fixed level
type Logger struct {
	level Level
}

func NewLogger(level Level) *Logger {
	return &Logger{
		level: level,
	}
}

func (l *Logger) Print(a ...any) {
	l.display(fmt.Sprint(a...))
}

func (l *Logger) Println(a ...any) {
	l.display(fmt.Sprint(a...))
}

func (l *Logger) Printf(format string, a ...any) {
	l.display(fmt.Sprintf(format, a...))
}

func (l *Logger) display(message string) {
	switch l.level {
	case LevelTrace:
		Trace(message)
	case LevelDebug:
		Debug(message)
	case LevelInfo:
		Info(message)
	case LevelWarn:
		Warn(message)
	default:
		Error(message)
	}
}
