package generator

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"postpilot/models"
)

var (
	mdLinkRe    = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	mdEmphRe    = regexp.MustCompile("[*_]{1,3}([^*_`]+)[*_]{1,3}")
	mdCodeRe    = regexp.MustCompile("`([^`]+)`")
	blankRunRe  = regexp.MustCompile(`\n{3,}`)
	numberRe    = regexp.MustCompile(`\d+`)
	paragraphRe = regexp.MustCompile(`\n\n+`)
)

// sanitizePlain converts markdown links to bare URLs and strips emphasis and
// code markers for plain-text output.
func sanitizePlain(text string) string {
	text = mdLinkRe.ReplaceAllString(text, "$2")
	text = mdEmphRe.ReplaceAllString(text, "$1")
	text = mdCodeRe.ReplaceAllString(text, "$1")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// truncateUnder cuts text to maxChars characters, preferring the last
// sentence boundary when it falls past 60% of the limit. The limit counts
// runes, not bytes, so multi-byte languages keep their full budget.
func truncateUnder(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	trimmed := []rune(text)[:maxChars-1]
	lastEnd := 0
	for i, r := range trimmed {
		switch r {
		case '.', '!', '?', '。', '！', '？':
			lastEnd = i + 1
		}
	}
	if lastEnd > 0 && float64(lastEnd) > float64(maxChars)*0.6 {
		return strings.TrimSpace(string(trimmed[:lastEnd]))
	}
	return strings.TrimSpace(string(trimmed))
}

// renderOutput formats the drafted body for the requested output format,
// appends the sources section and enforces the character budget.
func renderOutput(body string, sources []models.Article, format string, maxChars int, includeLinks, linksInLimit bool) string {
	var urls []string
	for _, a := range sources {
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}

	switch format {
	case models.FormatMarkdown:
		if includeLinks && len(urls) > 0 {
			var b strings.Builder
			b.WriteString("\n\n**Sources:**\n")
			for _, u := range urls {
				b.WriteString("- " + u + "\n")
			}
			section := strings.TrimRight(b.String(), "\n")
			return combineWithSources(strings.TrimSpace(body), section, maxChars, linksInLimit)
		}
		return truncateUnder(strings.TrimSpace(body), maxChars)

	case models.FormatHTML:
		var b strings.Builder
		for _, p := range paragraphRe.Split(strings.TrimSpace(body), -1) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			b.WriteString("<p>" + strings.ReplaceAll(p, "\n", "<br/>") + "</p>")
		}
		html := b.String()
		if includeLinks && len(urls) > 0 {
			var items strings.Builder
			for _, u := range urls {
				items.WriteString(`<li><a href="` + u + `">` + u + `</a></li>`)
			}
			section := "<h3>Sources</h3><ul>" + items.String() + "</ul>"
			return combineWithSources(html, section, maxChars, linksInLimit)
		}
		return truncateUnder(html, maxChars)

	default: // text
		body = sanitizePlain(body)
		for _, u := range urls {
			body = strings.ReplaceAll(body, u, "")
		}
		if includeLinks && len(urls) > 0 {
			section := "\n\nSources:\n" + strings.Join(urls, "\n")
			return combineWithSources(body, section, maxChars, linksInLimit)
		}
		return truncateUnder(body, maxChars)
	}
}

func combineWithSources(body, section string, maxChars int, linksInLimit bool) string {
	if linksInLimit {
		available := maxChars - utf8.RuneCountInString(section)
		if available < 0 {
			available = 0
		}
		if utf8.RuneCountInString(body) > available {
			body = truncateUnder(body, available)
		}
		return body + section
	}
	return truncateUnder(body, maxChars) + section
}

// extractJSON decodes the model output as a JSON object, tolerating prose
// around the object.
func extractJSON(text string, out interface{}) bool {
	if json.Unmarshal([]byte(text), out) == nil {
		return true
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return json.Unmarshal([]byte(text[start:end+1]), out) == nil
	}
	return false
}

// splitUsedSources separates the drafted body from the trailing
// "USED_SOURCES: [...]" marker. Indices are 1-based in the marker; the
// returned slice is 0-based and clamped to total. A missing or unparsable
// marker means all sources were used.
func splitUsedSources(response string, total int) (string, []int) {
	all := make([]int, total)
	for i := range all {
		all[i] = i
	}

	marker := strings.LastIndex(response, "USED_SOURCES:")
	if marker == -1 {
		return strings.TrimSpace(response), all
	}

	body := strings.TrimSpace(response[:marker])
	var used []int
	for _, raw := range numberRe.FindAllString(response[marker:], -1) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if n >= 1 && n <= total {
			used = append(used, n-1)
		}
	}
	if len(used) == 0 {
		return body, all
	}
	return body, used
}
