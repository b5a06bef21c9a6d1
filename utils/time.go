// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// ISOTimestampLayout matches the millisecond precision of JavaScript's toISOString
const ISOTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowISO returns the current UTC time formatted with ISOTimestampLayout
func UTCNowISO() string {
	return FormatISO(UTCNow())
}

// FormatISO formats t in UTC using ISOTimestampLayout
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOTimestampLayout)
}
