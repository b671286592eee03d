package summarizer

import (
	"regexp"
	"strings"
)

var (
	reHeading  = regexp.MustCompile(`^#{1,6}\s+`)
	reBullet   = regexp.MustCompile(`^[\-\*]\s+`)
	reLink     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic   = regexp.MustCompile(`(^|[^\w*])\*([^*\n]+)\*`)
	reHorizBar = regexp.MustCompile(`^(\-{3,}|\*{3,}|_{3,})$`)
)

// Flatten renders model markdown to plain text: headings lose their markers,
// emphasis and code spans lose their delimiters, links keep only their label,
// and horizontal rules disappear. Line structure is preserved so lists stay
// readable.
func Flatten(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		stripped := strings.TrimSpace(trimmed)

		if reHorizBar.MatchString(stripped) {
			continue
		}

		if reHeading.MatchString(stripped) {
			trimmed = reHeading.ReplaceAllString(stripped, "")
		} else if reBullet.MatchString(stripped) {
			trimmed = "- " + reBullet.ReplaceAllString(stripped, "")
		}

		trimmed = reLink.ReplaceAllString(trimmed, "$1")
		trimmed = reBold.ReplaceAllString(trimmed, "$1")
		trimmed = reItalic.ReplaceAllString(trimmed, "$1$2")
		trimmed = strings.ReplaceAll(trimmed, "__", "")
		trimmed = strings.ReplaceAll(trimmed, "`", "")

		out = append(out, trimmed)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
