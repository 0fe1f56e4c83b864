package logger

import (
	"log/slog"
	"strings"
)

// Keys whose values are partially masked: enough remains to correlate
// log lines without allowing the value to be replayed.
var maskedKeyPatterns = []string{
	"session",
	"token",
}

// Keys whose values are fully redacted.
var redactedKeyPatterns = []string{
	"passphrase",
	"password",
	"secret",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive masks or redacts an attribute if its key names
// sensitive content.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	strVal := a.Value.String()
	if strVal == "" {
		return a
	}

	keyLower := strings.ToLower(a.Key)
	for _, pattern := range redactedKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return slog.String(a.Key, redactedValue)
		}
	}
	for _, pattern := range maskedKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return slog.String(a.Key, MaskValue(strVal))
		}
	}
	return a
}

// MaskValue partially masks a value as first 3 chars + "..." + last 3 chars.
// Values too short to mask meaningfully become "***".
func MaskValue(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, patterns := range [][]string{maskedKeyPatterns, redactedKeyPatterns} {
		for _, pattern := range patterns {
			if strings.Contains(keyLower, pattern) {
				return true
			}
		}
	}
	return false
}
