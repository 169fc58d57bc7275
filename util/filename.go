package util

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// DefaultReelName is used whenever a reel has no usable title
const DefaultReelName = "smritikosha_reel"

// SafeFileName turns a reel title into a filename base by collapsing
// whitespace runs into underscores. The extension is appended by the caller
func SafeFileName(title string) string {
	base := whitespaceRe.ReplaceAllString(strings.TrimSpace(title), "_")
	if base == "" {
		return DefaultReelName
	}
	return base
}
