// Package redact scrubs sensitive fragments from strings before they reach
// logs or error responses: connection strings, bearer tokens, email
// addresses, file paths and SQL text.
package redact

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

var rules = []rule{
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`), "[REDACTED_DSN]"},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), "[REDACTED_TOKEN]"},
	{regexp.MustCompile(`(?i)(secret|password|token|key)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), "[REDACTED_CREDENTIAL]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), "[REDACTED_PATH]"},
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\s[\s\w,*()=$.'"]+\b(FROM|INTO|SET|WHERE)\b[\s\w,*()=$.'"]*`), "[REDACTED_SQL]"},
}

// String redacts sensitive fragments from the input.
func String(input string) string {
	if input == "" {
		return input
	}
	out := input
	for _, r := range rules {
		out = r.pattern.ReplaceAllString(out, r.placeholder)
	}
	return out
}

// Error redacts an error's message. Returns "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
