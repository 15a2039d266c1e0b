package citations

import (
	"regexp"
)

// Section boundary tables. These are configuration, not control flow: adding
// a header or terminator pattern extends recognition without touching the
// locator logic.
var (
	referenceHeaders = []string{
		`references`,
		`bibliography`,
		`works\s+cited`,
		`literature\s+cited`,
		`reference\s+list`,
		`cited\s+literature`,
	}

	sectionEnders = []string{
		`appendix(\s+[a-z0-9]+)?`,
		`acknowledg(e)?ments?`,
		`funding`,
		`supplementary\s+material(s)?`,
		`author\s+contributions`,
		`conflicts?\s+of\s+interest`,
		`about\s+the\s+authors?`,
	}
)

var (
	headerRe = compileHeadingAlternatives(referenceHeaders)
	enderRe  = compileHeadingAlternatives(sectionEnders)
)

// compileHeadingAlternatives builds a multiline pattern matching any of the
// given headings on its own line, with optional numbering and trailing colon.
func compileHeadingAlternatives(headings []string) *regexp.Regexp {
	alt := ""
	for i, h := range headings {
		if i > 0 {
			alt += "|"
		}
		alt += "(?:" + h + ")"
	}
	return regexp.MustCompile(`(?im)^\s*(?:\d+\.?\s+)?(?:` + alt + `)\s*:?\s*$`)
}

// FindReferencesSection locates the references/bibliography block. It returns
// the section body, the byte offset where the body starts, and whether a
// section was found. The body runs from the line after the header to the next
// known major section heading, or to the end of the document.
func FindReferencesSection(text string) (body string, start int, ok bool) {
	loc := headerRe.FindStringIndex(text)
	if loc == nil {
		return "", 0, false
	}

	start = loc[1]
	body = text[start:]

	if end := enderRe.FindStringIndex(body); end != nil {
		body = body[:end[0]]
	}

	return body, start, true
}
