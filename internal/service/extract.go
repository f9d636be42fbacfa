package service

import (
	"regexp"
	"strings"

	"github.com/timmy/memegen/internal/domain"
)

var (
	topTextPattern    = regexp.MustCompile(`Top text:\**\s*(.+)`)
	bottomTextPattern = regexp.MustCompile(`Bottom text:\**\s*(.+)`)
	quotePattern      = regexp.MustCompile(`^['"]+|['"]+$`)
	speakerPattern    = regexp.MustCompile(`^\s*\w+\s*:\s*`)
)

// ExtractCaptions parses labeled model output into a caption pair.
// Models often echo the instructions and examples before answering, so the
// last occurrence of each label wins. ok is false when either label is missing.
// A label with empty content still counts as found.
func ExtractCaptions(raw string) (caption domain.Caption, ok bool) {
	tops := topTextPattern.FindAllStringSubmatch(raw, -1)
	bottoms := bottomTextPattern.FindAllStringSubmatch(raw, -1)
	if len(tops) == 0 || len(bottoms) == 0 {
		return domain.Caption{}, false
	}

	return domain.Caption{
		Top:    cleanCaptionLine(tops[len(tops)-1][1]),
		Bottom: cleanCaptionLine(bottoms[len(bottoms)-1][1]),
	}, true
}

// cleanCaptionLine drops markdown emphasis, surrounding quotes and a leading
// speaker prefix.
func cleanCaptionLine(line string) string {
	line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*"))
	line = quotePattern.ReplaceAllString(line, "")
	line = speakerPattern.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}
