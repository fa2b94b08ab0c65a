package util

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidFileName is returned when nothing usable remains of a file name.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps the base name of an upload and reduces it to a
// URL-safe form: whitespace becomes '_', other unsafe runes are dropped.
func SanitizeFileName(name string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if s == "" || s == "." || s == ".." {
		return "", ErrInvalidFileName
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		case r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			continue
		}
		lastUnderscore = r == '_'
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "", ErrInvalidFileName
	}
	if len(out) > 200 {
		out = out[len(out)-200:]
	}
	return out, nil
}
