// Package filename recovers upload filenames whose UTF-8 bytes were
// mis-decoded by the transport as a single-byte Western charset.
//
// A browser sends "تقرير.md" as UTF-8 bytes D8 AA D9 82 ...; a transport that
// decodes header values as ISO-8859-1 turns each byte into its own rune
// ("ØªÙ\u0082..."). Decode reverses that by re-encoding the runes as
// single bytes and reading those bytes back as UTF-8.
package filename

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// westernCharsets are tried in order. ISO-8859-1 covers the usual transport
// behaviour; Windows-1252 covers clients that map 0x80-0x9F to punctuation.
var westernCharsets = []*charmap.Charmap{
	charmap.ISO8859_1,
	charmap.Windows1252,
}

// Decode returns the recovered filename, or name unchanged when it is
// already plain ASCII, cannot have come from a single-byte charset, or the
// recovered bytes are not valid UTF-8.
//
// The transform is not idempotent and must run exactly once, where the
// filename first arrives from the upload transport.
func Decode(name string) string {
	if isASCII(name) || !utf8.ValidString(name) {
		return name
	}

	for _, cs := range westernCharsets {
		raw, err := cs.NewEncoder().String(name)
		if err != nil {
			continue
		}
		if utf8.ValidString(raw) {
			return raw
		}
	}
	return name
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
