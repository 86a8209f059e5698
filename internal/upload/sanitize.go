package upload

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SecureFilename reduces an uploaded name to a flat ASCII file name that is
// safe to join with the upload directory. The result may be empty.
//
// The name is NFKD-normalized and stripped of non-ASCII, path separators
// become spaces, whitespace runs become a single underscore, anything outside
// [A-Za-z0-9_.-] is dropped and leading or trailing dots and underscores are
// trimmed. "../../etc/passwd" becomes "etc_passwd".
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var ascii strings.Builder
	ascii.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 0x80 {
			ascii.WriteRune(r)
		}
	}

	spaced := strings.ReplaceAll(ascii.String(), "/", " ")
	joined := strings.Join(strings.FieldsFunc(spaced, isSpace), "_")

	var kept strings.Builder
	kept.Grow(len(joined))
	for i := 0; i < len(joined); i++ {
		if allowed(joined[i]) {
			kept.WriteByte(joined[i])
		}
	}

	return strings.Trim(kept.String(), "._")
}

// isSpace matches the ASCII characters treated as whitespace when splitting
// names, including the information separators 0x1c-0x1f.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x1c, 0x1d, 0x1e, 0x1f:
		return true
	}
	return false
}

func allowed(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '.' || c == '-'
}
