package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/timmy/memegen/internal/domain"
)

var (
	scorePattern = regexp.MustCompile(`\b([1-9]|10)\b`)
	// "out of 10", "/10" and "1 to 10" name the scale, not the rating.
	scalePattern = regexp.MustCompile(`(?i)(\bout\s+of\s+10\b|/\s*10\b|\b(?:from\s+)?1\s*(?:-|–|to)\s*10\b)`)
)

// QualityGate rejects captions that leak prompt instructions.
type QualityGate struct {
	banned []string
}

// NewQualityGate creates a gate over the given banned fragments.
// Empty fragments are ignored since they would match everything.
func NewQualityGate(banned []string) *QualityGate {
	kept := make([]string, 0, len(banned))
	for _, b := range banned {
		if b != "" {
			kept = append(kept, b)
		}
	}
	return &QualityGate{banned: kept}
}

// IsBad reports whether text contains any banned fragment. Matching is case-sensitive.
func (g *QualityGate) IsBad(text string) bool {
	for _, b := range g.banned {
		if strings.Contains(text, b) {
			return true
		}
	}
	return false
}

// Accepts reports whether both lines are present and clean.
func (g *QualityGate) Accepts(c domain.Caption) bool {
	return c.Complete() && !g.IsBad(c.Top) && !g.IsBad(c.Bottom)
}

// ParseHumorScore returns the last standalone integer in [1,10] found in reply,
// or 0 when there is none. Mentions of the scale itself, such as "out of 10"
// or "from 1 to 10", are ignored.
func ParseHumorScore(reply string) domain.HumorScore {
	matches := scorePattern.FindAllString(scalePattern.ReplaceAllString(reply, " "), -1)
	if len(matches) == 0 {
		return domain.MinHumorScore
	}
	n, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return domain.MinHumorScore
	}
	return domain.HumorScore(n)
}
