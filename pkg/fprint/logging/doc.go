// Package logging adapts log/slog for the fprint wrapper and provides
// a redaction helper for biometric material.
package logging
