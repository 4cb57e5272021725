package speech

import "strings"

// speakableReplacer applies, in order: "#" -> " Sharp ", "b" -> " Flat ",
// "-" -> "", "/" -> " ". The patterns cannot overlap and no replacement
// introduces a later pattern, so one pass matches sequential replacement.
var speakableReplacer = strings.NewReplacer(
	"#", " Sharp ",
	"b", " Flat ",
	"-", "",
	"/", " ",
)

// Speakable returns the text spoken for a key name, e.g. "A#-0/Bb-0" becomes
// "A Sharp 0 B Flat 0". The "b" substitution is case-sensitive and applies to
// every lowercase b, not just accidentals.
func Speakable(name string) string {
	return speakableReplacer.Replace(name)
}
