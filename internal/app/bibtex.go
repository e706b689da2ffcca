package app

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"reason/internal/paper"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// bib prints BibTeX entries for the selection and copies them to the
// clipboard.
func bib(sh *Shell, in Input) (Output, error) {
	sel, err := selectPapers(sh, in)
	if err != nil {
		return nil, err
	}
	if len(sel) == 0 {
		return Message("0 papers."), nil
	}

	used := make(map[string]bool)
	entries := make([]string, 0, len(sel))
	for _, i := range sel {
		p := &sh.State.Papers[i]
		key := uniqueBibtexKey(buildBibtexKey(p), used)
		entries = append(entries, buildBibtexEntry(p, key))
	}
	text := strings.Join(entries, "\n")

	if sh.Clipboard != nil {
		if err := sh.Clipboard.WriteAll(text); err != nil {
			sh.reportf("Failed to access clipboard: %v", err)
		}
	}
	return Message(text), nil
}

// uniqueBibtexKey suffixes base with a, b, ..., z, aa, ab, ... until the
// key is unused, and marks the result as used.
func uniqueBibtexKey(base string, used map[string]bool) string {
	key := base
	for n := 0; used[key]; n++ {
		key = base + keySuffix(n)
	}
	used[key] = true
	return key
}

func keySuffix(n int) string {
	var b []byte
	for n++; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('a' + (n-1)%26)}, b...)
	}
	return string(b)
}

func buildBibtexEntry(p *paper.Paper, citeKey string) string {
	title := strings.TrimSpace(p.Title)
	if title == "" && p.Filepath != "" {
		title = strings.TrimSuffix(filepath.Base(p.Filepath), filepath.Ext(p.Filepath))
	}
	author := normalizeSpaces(strings.Join(p.Authors, " and "))
	venue := normalizeSpaces(p.Venue)
	entryType := determineBibtexType(author, venue)

	fields := make([]bibField, 0, 7)
	fields = append(fields, bibField{name: "title", value: title})
	if author != "" {
		fields = append(fields, bibField{name: "author", value: author})
	}
	if venue != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		fields = append(fields, bibField{name: fieldName, value: venue})
	}
	if year := extractYear(p.Year); year != "" {
		fields = append(fields, bibField{name: "year", value: year})
	}
	if keywords := normalizeKeywords(strings.Join(p.Labels, ",")); keywords != "" {
		fields = append(fields, bibField{name: "keywords", value: keywords})
	}
	if p.Filepath != "" {
		fields = append(fields, bibField{name: "file", value: p.Filepath})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, citeKey)
	for i, field := range fields {
		fmt.Fprintf(&b, "  %s = {%s}", field.name, escapeBibtexValue(field.value))
		if i < len(fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

type bibField struct {
	name  string
	value string
}

// determineBibtexType picks the entry type. Conference venues become
// inproceedings; anything else with a venue is an article.
func determineBibtexType(author, venue string) string {
	author = strings.TrimSpace(author)
	venue = strings.TrimSpace(venue)
	if venue != "" && isProceedings(venue) {
		return "inproceedings"
	}
	if venue != "" || author != "" {
		return "article"
	}
	return "misc"
}

var proceedingsHints = []string{"conf", "proc", "symposium", "workshop", "osdi", "sosp", "nsdi", "usenix", "eurosys", "neurips", "nips", "icml", "iclr", "cvpr", "mlsys"}

func isProceedings(venue string) bool {
	lower := strings.ToLower(venue)
	for _, hint := range proceedingsHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// buildBibtexKey joins the first author's last name, the year and the first
// significant title word, as in Vaswani2017Attention.
func buildBibtexKey(p *paper.Paper) string {
	var parts []string
	if author := firstAuthorKey(p.Field("first-author")); author != "" {
		parts = append(parts, author)
	}
	if year := extractYear(p.Year); year != "" {
		parts = append(parts, year)
	}
	if w := firstTitleToken(p.Title); w != "" {
		parts = append(parts, w)
	}
	candidate := sanitizeIdentifier(strings.Join(parts, ""))
	if candidate == "" && p.Filepath != "" {
		candidate = sanitizeIdentifier(strings.TrimSuffix(filepath.Base(p.Filepath), filepath.Ext(p.Filepath)))
	}
	if candidate == "" {
		candidate = "entry"
	}
	runes := []rune(candidate)
	if len(runes) > 0 && !unicode.IsLetter(runes[0]) {
		candidate = "ref" + candidate
	}
	return candidate
}

func firstAuthorKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if idx := strings.Index(lower, " and "); idx >= 0 {
		raw = raw[:idx]
	} else if idx := strings.Index(raw, ";"); idx >= 0 {
		raw = raw[:idx]
	}
	// "Last, First" keeps the part before the comma.
	if idx := strings.Index(raw, ","); idx >= 0 {
		return sanitizeIdentifier(raw[:idx])
	}
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return ""
	}
	return sanitizeIdentifier(parts[len(parts)-1])
}

func firstTitleToken(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	fields := strings.FieldsFunc(title, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	for _, word := range fields {
		if len(word) >= 3 {
			return word
		}
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func extractYear(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return yearPattern.FindString(raw)
}

func sanitizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeBibtexValue(s string) string {
	if s == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"{", "\\{",
		"}", "\\}",
	)
	return replacer.Replace(s)
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeKeywords(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = strings.NewReplacer(";", ",", "|", ",").Replace(raw)
	parts := strings.Split(raw, ",")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ", ")
}
