package logging

import "strings"

// FormatSubject builds the key/stage subject string used in console output.
func FormatSubject(keyIndex, keyName, stage string) string {
	keyIndex = strings.TrimSpace(keyIndex)
	keyName = strings.TrimSpace(keyName)
	stage = strings.TrimSpace(stage)

	var subject string
	switch {
	case keyIndex != "" && keyName != "":
		subject = "Key #" + keyIndex + " " + keyName
	case keyIndex != "":
		subject = "Key #" + keyIndex
	case keyName != "":
		subject = keyName
	}
	switch {
	case subject != "" && stage != "":
		return subject + " (" + stage + ")"
	case stage != "":
		return stage
	default:
		return subject
	}
}
