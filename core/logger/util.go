package logger

import (
	"errors"
	"regexp"
	"time"
)

// Status maps error to a unified status string for logs.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Took returns rounded duration since start for compact logging.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds duration to the nearest millisecond.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// botTokenPattern matches Telegram bot tokens (numeric id, colon, 35 url-safe chars).
var botTokenPattern = regexp.MustCompile(`\d{6,}:[A-Za-z0-9_-]{30,}`)

// Redact masks bot tokens in s.
func Redact(s string) string {
	if s == "" {
		return s
	}
	return botTokenPattern.ReplaceAllString(s, "<redacted>")
}

// RedactError returns err with bot tokens masked in its message.
func RedactError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if red := Redact(msg); red != msg {
		return errors.New(red)
	}
	return err
}
