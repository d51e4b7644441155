package console

import (
	"strings"
	"unicode"
)

// Humanize turns a machine name into a label, e.g. "custom_bundle" into "Custom bundle"
func Humanize(machineName string) string {
	words := strings.FieldsFunc(machineName, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return ""
	}

	human := []rune(strings.ToLower(strings.Join(words, " ")))
	human[0] = unicode.ToUpper(human[0])
	return string(human)
}
