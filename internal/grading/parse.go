package grading

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
)

var scoreSeparator = regexp.MustCompile(`[,\s]+`)

// ParseScores reads "1 2 3,4" style input into exactly n slots. Tokens past
// n are dropped, missing ones are zero and unparseable ones count as zero.
func ParseScores(text string, n int) models.Slots {
	if n < 0 {
		n = 0
	}
	out := make(models.Slots, 0, n)

	text = strings.TrimSpace(text)
	if text != "" {
		for _, tok := range scoreSeparator.Split(text, -1) {
			if tok == "" {
				continue
			}
			if len(out) == n {
				break
			}
			out = append(out, ParseNumber(tok))
		}
	}

	return out.Fit(n)
}

// ParseNumber returns 0 for empty, unparseable or non-finite input.
func ParseNumber(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
