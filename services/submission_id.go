package services

import (
	"strings"
	"time"
)

// fallbackIDName is used when nothing of the name survives sanitising.
const fallbackIDName = "solicitud"

// maxIDNameLength caps the sanitised name so the full id stays well inside
// store.MaxIDLength.
const maxIDNameLength = 200

// idTimestampLayout is an ISO-8601 UTC timestamp with ':' and '.' replaced by '-'.
const idTimestampLayout = "2006-01-02T15-04-05-000Z"

var accentFold = map[rune]rune{
	'á': 'a',
	'é': 'e',
	'í': 'i',
	'ó': 'o',
	'ú': 'u',
	'ü': 'u',
	'ñ': 'n',
}

// BuildSubmissionID derives the record id from the submitted name and the
// acceptance time, e.g. "José Ruiz" at 2024-03-15T14:30:00.123Z becomes
// "jose_ruiz-2024-03-15T14-30-00-123Z".
func BuildSubmissionID(name string, at time.Time) string {
	return SanitizeIDName(name) + "-" + at.UTC().Format(idTimestampLayout)
}

// SanitizeIDName lowercases name, folds the Spanish accented letters to
// ASCII and replaces everything else outside [a-z0-9] with single underscores.
// The result is at most maxIDNameLength bytes.
func SanitizeIDName(name string) string {
	var b strings.Builder
	lastUnderscore := true // suppresses leading underscores
	for _, r := range strings.ToLower(name) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	out := b.String()
	if len(out) > maxIDNameLength {
		out = out[:maxIDNameLength]
	}
	out = strings.TrimRight(out, "_")
	if out == "" {
		return fallbackIDName
	}
	return out
}
