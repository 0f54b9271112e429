package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length caps for values written to logs, in runes
const (
	MaxPathLength         = 500
	MaxEmailLength        = 254
	MaxTitleLength        = 120
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength applies when a caller passes no limit
	MaxGeneralStringLength = 2000
)

// SanitizePath sanitizes a URL path for safe logging
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString drops control characters and invalid UTF-8 from s and cuts
// it to maxLength runes, marking the cut with "...".
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}

	s = strings.ToValidUTF8(s, "")
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if !unicode.IsPrint(r) && r != ' ' && r != '\t' {
			continue
		}
		if n == maxLength {
			b.WriteString("...")
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// SanitizeError sanitizes an error message for safe logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeEmail keeps the domain and the first character of the local part:
// "jane@example.com" is logged as "j***@example.com"
func SanitizeEmail(email string) string {
	email = SanitizeString(email, MaxEmailLength)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	first, _ := utf8.DecodeRuneInString(local)
	return string(first) + "***@" + domain
}

// SanitizeTitle sanitizes a user-supplied goal title
func SanitizeTitle(title string) string {
	return SanitizeString(title, MaxTitleLength)
}
