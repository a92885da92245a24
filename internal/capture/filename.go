package capture

import (
	"strings"
	"unicode"
)

// FileName returns the download name for a CV export. Letters and digits of
// the full name are kept, every other run of characters becomes a single
// underscore.
func FileName(fullName string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.TrimSpace(fullName) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	name := b.String()
	if name == "" {
		name = "document"
	}
	return "CV_" + name + ".pdf"
}
