package logging

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

const redacted = "[REDACTED]"

var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`ghp_[a-zA-Z0-9]{8,}`),
	regexp.MustCompile(`ghs_[a-zA-Z0-9]{8,}`),
	regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{8,}`),
	regexp.MustCompile(`(Bearer|token)\s+[^\s'"]+`),
}

var sensitiveFields = []string{"token", "secret", "password", "authorization", "db_connect"}

// RedactionHook scrubs credentials from messages and string fields.
type RedactionHook struct{}

// NewRedactionHook creates a RedactionHook.
func NewRedactionHook() *RedactionHook {
	return &RedactionHook{}
}

// Levels implements logrus.Hook.
func (h *RedactionHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (h *RedactionHook) Fire(entry *logrus.Entry) error {
	entry.Message = Redact(entry.Message)
	for key, value := range entry.Data {
		if isSensitiveField(key) {
			entry.Data[key] = redacted
			continue
		}
		switch v := value.(type) {
		case string:
			entry.Data[key] = Redact(v)
		case error:
			entry.Data[key] = Redact(v.Error())
		}
	}
	return nil
}

// Redact replaces every known token shape in text.
func Redact(text string) string {
	for _, p := range tokenPatterns {
		text = p.ReplaceAllString(text, redacted)
	}
	return text
}

func isSensitiveField(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveFields {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
