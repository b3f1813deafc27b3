package main

import (
	"strings"
	"unicode/utf8"

	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// decodeMetaText turns the raw bytes of a text meta event into UTF-8. SMF
// doesn't define an encoding, older files are commonly Shift-JIS (Japanese
// sequencers) or Windows-1252.
func decodeMetaText(raw string) string {
	if utf8.ValidString(raw) {
		return raw
	}

	if decoded, _, err := transform.String(japanese.ShiftJIS.NewDecoder(), raw); err == nil &&
		!strings.ContainsRune(decoded, utf8.RuneError) {
		return decoded
	}

	if decoded, _, err := transform.String(charmap.Windows1252.NewDecoder(), raw); err == nil {
		return decoded
	}

	return strings.ToValidUTF8(raw, "?")
}

// getTrackName returns the first track name (or text event) of a track
func getTrackName(track smf.Track) string {
	for _, event := range track {
		msg := event.Message

		var trackName string
		if msg.GetMetaTrackName(&trackName) {
			return decodeMetaText(trackName)
		}

		var text string
		if msg.GetMetaText(&text) {
			return decodeMetaText(text)
		}
	}
	return ""
}
