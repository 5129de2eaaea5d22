// Package voice turns a speech-to-text transcript into name + quantity
// fields. The transcript collaborator itself (speech recognition) is
// external; this is only the parsing half.
package voice

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	trailingPunctRe = regexp.MustCompile("[。、]+$")
	numberRe        = regexp.MustCompile(`\d+`)
	// fixed small unit vocabulary, stripped from the name
	unitRe = regexp.MustCompile("個|つ|本|枚|束|パック")
)

type Parsed struct {
	Name string  `json:"name"`
	Qty  float64 `json:"qty"`
}

// ParseTranscript extracts the first number as the quantity and strips
// digits and unit words from the rest to form the item name.
// "りんご3個" -> {りんご 3}; no number leaves Qty at 0 so the caller can
// apply its own default.
func ParseTranscript(text string) Parsed {
	text = trailingPunctRe.ReplaceAllString(strings.TrimSpace(text), "")

	match := numberRe.FindString(text)

	if match == "" {
		return Parsed{Name: text}
	}

	qty, _ := strconv.ParseFloat(match, 64)

	name := numberRe.ReplaceAllString(text, "")
	name = unitRe.ReplaceAllString(name, "")

	return Parsed{
		Name: strings.TrimSpace(name),
		Qty:  qty,
	}
}
