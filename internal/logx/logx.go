// Package logx writes one JSON object per line to a standard logger.
package logx

import (
	"encoding/json"
	"log"
	"time"
)

// JSON marshals payload onto a single log line.
func JSON(logger *log.Logger, payload map[string]any) {
	if logger == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logger.Printf(`{"level":"error","msg":"log_marshal_failed","error":%q}`, err.Error())
		return
	}
	logger.Print(string(b))
}

// Event logs msg at level with a timestamp and extra fields.
func Event(logger *log.Logger, level, msg string, fields map[string]any) {
	payload := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		payload[k] = v
	}
	payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	payload["level"] = level
	payload["msg"] = msg
	JSON(logger, payload)
}

func Info(logger *log.Logger, msg string, fields map[string]any) {
	Event(logger, "info", msg, fields)
}

func Error(logger *log.Logger, msg string, err error, fields map[string]any) {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	Event(logger, "error", msg, payload)
}
