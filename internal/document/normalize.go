package document

import (
	"regexp"
	"strings"
	"unicode"
)

// Heading patterns, checked in order. The numeric pattern captures the marker
// ("2.1", "3.4.1") as the section label; the keyword pattern uses the whole
// heading line.
var (
	numericHeadingRe = regexp.MustCompile(`^(\d+(?:\.\d+)+)[\s.:)-]`)
	keywordHeadingRe = regexp.MustCompile(`(?i)^(section|article|clause|exhibit|schedule|appendix)\s+[\w.]+`)
)

// Normalize turns raw parsed text into a Document. It never fails: text with
// no recognizable headings yields a single section, and empty input yields a
// Document with empty sections. Whitespace is collapsed and non-printable
// characters stripped before segmentation.
func Normalize(raw, sourceRef string) Document {
	text := canonicalize(raw)
	doc := Document{RawText: text, SourceRef: sourceRef}
	if text == "" {
		return doc
	}

	var (
		sections []Section
		label    = PreambleLabel
		body     []string
	)
	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if label == PreambleLabel && content == "" && len(sections) == 0 {
			body = nil
			return
		}
		sections = append(sections, Section{Label: label, Body: content})
		body = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if next, ok := headingLabel(trimmed); ok {
			flush()
			label = next
			body = append(body, trimmed)
			continue
		}
		body = append(body, trimmed)
	}
	flush()

	if len(sections) == 0 {
		sections = []Section{{Label: PreambleLabel, Body: text}}
	}
	doc.Sections = sections
	return doc
}

// headingLabel reports whether the line opens a new section and returns its
// label.
func headingLabel(line string) (string, bool) {
	if line == "" {
		return "", false
	}
	if m := numericHeadingRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if keywordHeadingRe.MatchString(line) {
		return line, true
	}
	if isShoutedHeading(line) {
		return line, true
	}
	return "", false
}

// isShoutedHeading detects short all-caps lines used as headings in scanned
// contracts ("SERVICE AGREEMENT", "PAYMENT TERMS").
func isShoutedHeading(line string) bool {
	if len(line) > 60 {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters >= 3
}

// canonicalize collapses runs of spaces and tabs, strips non-printable runes
// and normalizes line endings. Blank lines are preserved as section spacing
// cues were already consumed upstream.
func canonicalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var b strings.Builder
	b.Grow(len(raw))
	lastSpace := false
	for _, r := range raw {
		switch {
		case r == '\n':
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
		case unicode.IsPrint(r):
			b.WriteRune(r)
			lastSpace = false
		}
	}
	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
