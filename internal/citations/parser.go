package citations

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/textguard/textguard/pkg/models"
)

const maxAuthors = 10

// Field extraction patterns, named so each is independently testable.
var (
	doiRe    = regexp.MustCompile(`(?i)\b(?:doi:?\s*|https?://(?:dx\.)?doi\.org/)(10\.\d{4,9}/[^\s"<>]+)`)
	urlRe    = regexp.MustCompile(`https?://[^\s"<>]+`)
	pmidRe   = regexp.MustCompile(`(?i)\bPMID:?\s*(\d{4,9})`)
	yearRe   = regexp.MustCompile(`\(?\b((?:19|20)\d{2})\b\)?`)
	quotedRe = regexp.MustCompile(`[""]([^""]+)[""]|"([^"]+)"`)
	volumeRe = regexp.MustCompile(`(?i)\bvol\.?\s*(\d+)|\b(\d+)\s*\(\d+\)`)
	issueRe  = regexp.MustCompile(`\d+\s*\((\d+)\)|(?i)\bno\.?\s*(\d+)`)
	pagesRe  = regexp.MustCompile(`(?i)\b(?:pp?\.?\s*)?(\d+)\s*[-–]\s*(\d+)\b`)

	numberedEntryRe = regexp.MustCompile(`(?m)^\s*(?:\[(\d{1,3})\]|(\d{1,3})[.)])\s+`)
	leadingNumberRe = regexp.MustCompile(`^\s*(?:\[(\d{1,3})\]|(\d{1,3})[.)])\s*`)

	authorSeparatorRe = regexp.MustCompile(`;|,?\s+and\s+|\s*&\s*|,\s+`)
	sentenceBreakRe   = regexp.MustCompile(`\.\s+(?:[A-Z\[]|\d)`)
)

// journalKeywords flag a text fragment as a publication name.
var journalKeywords = []string{
	"journal", "proceedings", "review", "reviews", "letters", "transactions",
	"annals", "archives", "bulletin", "quarterly", "lancet", "nature",
	"science", "cell", "bmj", "jama", "plos", "medicine", "research",
}

// ParseReferences splits the references section body into entries and parses
// each one. Entries that fail to parse any structured field are kept with
// Parsed set to false and the original text intact.
func ParseReferences(body string) []models.ReferenceEntry {
	raws := splitEntries(body)
	entries := make([]models.ReferenceEntry, 0, len(raws))

	for i, raw := range raws {
		entry := parseEntry(raw)
		if entry.Number == 0 {
			entry.Number = i + 1
		}
		entries = append(entries, entry)
	}

	return entries
}

// splitEntries tries numbered-marker splitting, then line splitting, then
// sentence-boundary splitting. The first strategy producing at least two
// plausible entries wins; a single numbered entry is still accepted.
func splitEntries(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}

	if entries := splitNumbered(body); len(entries) >= 1 {
		return entries
	}

	if entries := splitLines(body); len(entries) >= 2 {
		return entries
	}

	return splitSentenceBoundaries(body)
}

func splitNumbered(body string) []string {
	locs := numberedEntryRe.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return nil
	}

	var entries []string
	for i, loc := range locs {
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		entry := strings.TrimSpace(body[loc[0]:end])
		if plausibleEntry(entry) {
			entries = append(entries, entry)
		}
	}
	return entries
}

func splitLines(body string) []string {
	var entries []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if plausibleEntry(line) {
			entries = append(entries, line)
		}
	}
	return entries
}

func splitSentenceBoundaries(body string) []string {
	flat := strings.Join(strings.Fields(body), " ")
	var entries []string
	start := 0
	for {
		loc := sentenceBreakRe.FindStringIndex(flat[start:])
		if loc == nil {
			break
		}
		// The break pattern consumes the capital letter opening the next
		// entry; cut just after the period.
		cut := start + loc[0] + 1
		entry := strings.TrimSpace(flat[start:cut])
		if plausibleEntry(entry) {
			entries = append(entries, entry)
		}
		start = cut
	}
	if tail := strings.TrimSpace(flat[start:]); plausibleEntry(tail) {
		entries = append(entries, tail)
	}
	if len(entries) < 2 {
		if plausibleEntry(flat) {
			return []string{flat}
		}
		return nil
	}
	return entries
}

// plausibleEntry filters out headings and stray fragments.
func plausibleEntry(s string) bool {
	return len(s) >= 20 && len(strings.Fields(s)) >= 4
}

func parseEntry(raw string) models.ReferenceEntry {
	entry := models.ReferenceEntry{Original: raw}
	rest := raw

	if m := leadingNumberRe.FindStringSubmatch(rest); m != nil {
		numText := m[1]
		if numText == "" {
			numText = m[2]
		}
		if n, err := strconv.Atoi(numText); err == nil {
			entry.Number = n
		}
		rest = rest[len(m[0]):]
	}

	if m := doiRe.FindStringSubmatch(rest); m != nil {
		entry.DOI = strings.TrimRight(m[1], ".,;")
	}
	if m := pmidRe.FindStringSubmatch(rest); m != nil {
		entry.PMID = m[1]
	}
	if m := urlRe.FindString(rest); m != "" && !strings.Contains(m, "doi.org") {
		entry.URL = strings.TrimRight(m, ".,;")
	}

	yearLoc := yearRe.FindStringSubmatchIndex(rest)
	if yearLoc != nil {
		if y, err := strconv.Atoi(rest[yearLoc[2]:yearLoc[3]]); err == nil {
			entry.Year = y
		}
	}

	entry.Authors = parseAuthors(rest, yearLoc)
	entry.Title = parseTitle(rest, yearLoc)
	entry.Journal = matchJournal(rest)

	if m := volumeRe.FindStringSubmatch(rest); m != nil {
		entry.Volume = firstNonEmpty(m[1:])
	}
	if m := issueRe.FindStringSubmatch(rest); m != nil {
		entry.Issue = firstNonEmpty(m[1:])
	}
	if m := pagesRe.FindStringSubmatch(rest); m != nil {
		entry.Pages = m[1] + "-" + m[2]
	}

	entry.Parsed = entry.Year != 0 || entry.DOI != "" || entry.PMID != "" ||
		entry.URL != "" || entry.Title != "" || len(entry.Authors) > 0

	return entry
}

// parseAuthors takes the text preceding the year and splits it on common
// author separators, capped at maxAuthors.
func parseAuthors(rest string, yearLoc []int) []string {
	segment := rest
	if yearLoc != nil {
		segment = rest[:yearLoc[0]]
	}

	// Authors end at the first sentence period in most styles.
	if i := strings.Index(segment, ". "); i > 0 && looksLikeNames(segment[:i]) {
		segment = segment[:i]
	}

	segment = strings.TrimSpace(segment)
	if segment == "" || !looksLikeNames(segment) {
		return nil
	}

	var authors []string
	for _, part := range authorSeparatorRe.Split(segment, -1) {
		part = strings.TrimSpace(strings.Trim(part, ".,"))
		if part == "" || len(part) > 60 {
			continue
		}
		authors = append(authors, part)
		if len(authors) == maxAuthors {
			break
		}
	}
	return authors
}

// looksLikeNames rejects segments that read like prose rather than an author
// list: names are short capitalized words with few lowercase connectors.
func looksLikeNames(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 40 {
		return false
	}
	capitalized := 0
	for _, w := range words {
		r := rune(w[0])
		if r >= 'A' && r <= 'Z' {
			capitalized++
		}
	}
	return float64(capitalized)/float64(len(words)) >= 0.5
}

// parseTitle prefers a quoted substring, then falls back to the text
// following the year up to the next period.
func parseTitle(rest string, yearLoc []int) string {
	if m := quotedRe.FindStringSubmatch(rest); m != nil {
		if m[1] != "" {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[2])
	}

	var after string
	if yearLoc != nil {
		after = rest[yearLoc[1]:]
	} else {
		// Vancouver puts the title after the author sentence.
		if i := strings.Index(rest, ". "); i > 0 {
			after = rest[i+2:]
		}
	}

	after = strings.TrimLeft(after, " .,;:)")
	if i := strings.IndexAny(after, ".?"); i > 0 {
		after = after[:i+1]
	}
	after = strings.TrimSpace(strings.TrimRight(after, "."))
	if len(after) < 8 || strings.HasPrefix(after, "http") {
		return ""
	}
	return after
}

func matchJournal(rest string) string {
	lower := strings.ToLower(rest)
	for _, kw := range journalKeywords {
		i := strings.Index(lower, kw)
		if i < 0 {
			continue
		}
		// Report the containing fragment between punctuation marks.
		start := strings.LastIndexAny(rest[:i], ".;") + 1
		end := i + len(kw)
		if j := strings.IndexAny(rest[end:], ".,;"); j >= 0 {
			end += j
		} else {
			end = len(rest)
		}
		return strings.TrimSpace(rest[start:end])
	}
	return ""
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}
