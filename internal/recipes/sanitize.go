package recipes

import (
	"regexp"
	"strings"
)

var (
	fenceRe = regexp.MustCompile("```html|```")
	styleRe = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
)

// Sanitize strips markdown code fences and embedded <style> blocks from the
// generated text before it is handed back for display.
func Sanitize(text string) string {
	text = fenceRe.ReplaceAllString(text, "")
	text = styleRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
