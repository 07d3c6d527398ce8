package observability

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Fields carries structured context for a single log line.
type Fields map[string]any

type Logger struct {
	base *log.Logger
}

func NewLogger() *Logger {
	return &Logger{base: log.New(os.Stdout, "", 0)}
}

func (l *Logger) Info(message string, fields Fields) {
	l.write("info", message, fields)
}

// Warn is the level for client faults worth auditing: rejected tokens,
// failed logins, bad admin keys.
func (l *Logger) Warn(message string, fields Fields) {
	l.write("warn", message, fields)
}

func (l *Logger) Error(message string, fields Fields) {
	l.write("error", message, fields)
}

func (l *Logger) write(level, message string, fields Fields) {
	payload := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"message":   message,
	}
	for k, v := range fields {
		payload[k] = v
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		l.base.Println(`{"level":"error","message":"failed to encode log"}`)
		return
	}

	l.base.Println(string(encoded))
}
