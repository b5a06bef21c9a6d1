package utils

import (
	"encoding/json"
	"log"
)

// LogEvent writes one JSON line through the standard logger. Every field is marshalled,
// so request paths and panic values cannot break out of the line.
func LogEvent(level, event string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	for key, value := range fields {
		entry[key] = value
	}
	entry["time"] = UTCNowISO()
	entry["level"] = level
	entry["event"] = event

	line, err := json.Marshal(entry)
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		log.Printf(`{"time":"%s","level":"error","event":"log_encode_failed","error":%s}`, UTCNowISO(), msg)
		return
	}
	log.Print(string(line))
}
