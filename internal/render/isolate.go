package render

import "strings"

// Unicode bidirectional isolates. LRI opens a left-to-right isolate, PDI closes it.
const (
	LRI = "\u2066"
	PDI = "\u2069"
)

var isolationStripper = strings.NewReplacer(LRI, "", PDI, "")

// Isolate wraps a numeric token so it renders left-to-right, in order, inside right-to-left prose.
func Isolate(token string) string {
	return LRI + token + PDI
}

// StripIsolation removes every isolate marker.
func StripIsolation(s string) string {
	return isolationStripper.Replace(s)
}

var persianDigits = strings.NewReplacer(
	"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
	"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
	".", "٫",
)

func shapeDigits(s string, persian bool) string {
	if !persian {
		return s
	}
	return persianDigits.Replace(s)
}
