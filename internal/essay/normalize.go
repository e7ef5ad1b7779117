package essay

import "strings"

// closingSentence pads essays that come back noticeably short.
const closingSentence = "I am excited to bring this blend of analytical rigor and product instinct " +
	"to the team, and I would welcome the chance to contribute from day one."

// normalizeSlack is the tolerance band around the target before trimming or
// padding kicks in.
const normalizeSlack = 20

// Normalize enforces the word-count band around target. Essays more than
// normalizeSlack words over the target are cut to the first target words with
// a terminating period; essays more than normalizeSlack under get the fixed
// closing sentence appended. The truncation boundary is not grammar-aware.
func Normalize(text string, target int) (string, int) {
	if target <= 0 {
		target = DefaultTargetWords
	}

	text = strings.TrimSpace(text)
	words := strings.Fields(text)

	switch {
	case len(words) > target+normalizeSlack:
		text = strings.Join(words[:target], " ")
		text = strings.TrimRight(text, ".,;:") + "."
	case len(words) < target-normalizeSlack:
		if text != "" && !strings.HasSuffix(text, ".") {
			text += "."
		}
		if text == "" {
			text = closingSentence
		} else {
			text += " " + closingSentence
		}
	}

	return text, len(strings.Fields(text))
}
