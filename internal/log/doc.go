// Package log provides structured logging with credential redaction.
//
// The crawler logs connection strings and configuration during storage
// resolution; a DATABASE_URL routinely embeds a password in its userinfo
// section. RedactHandler wraps any slog.Handler and masks such values
// before they reach the output, so a verbose run can be pasted into a bug
// report without leaking credentials.
package log
