package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LooksLikeJunkTitle catches link texts like "View job" or "Apply now" that
// boards use instead of the posting title.
func LooksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	for _, w := range []string{"view", "apply", "candidatar", "ver vaga"} {
		if strings.Contains(l, w) {
			return true
		}
	}
	return false
}

func FindLocation(doc *goquery.Document) string {
	candidates := []string{
		".location",
		".opening .location",
		".opening .location--small",
		".job__location",
		".app-title + .location", // some boards
		"[data-testid='job-location']",
		"[data-testid='location']",
	}

	for _, sel := range candidates {
		if t := CleanText(doc.Find(sel).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}

	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := ExtractLocationFromLabeledText(v); loc != "" {
			return NormalizeLocation(loc)
		}
	}

	body := CleanText(doc.Find("body").Text())
	if loc := ExtractLocationFromLabeledText(body); loc != "" {
		return NormalizeLocation(loc)
	}

	return ""
}

// ExtractLocationFromLabeledText returns what follows a "Location:" style label.
func ExtractLocationFromLabeledText(s string) string {
	low := strings.ToLower(s)

	labels := []string{
		"job location:",
		"locations:",
		"location:",
		"localização:",
		"local de trabalho:",
	}

	for _, lab := range labels {
		if i := strings.Index(low, lab); i >= 0 {
			start := i + len(lab)
			rest := strings.TrimSpace(s[start:])

			// stop at newline-ish boundaries if present
			for _, cut := range []string{"\n", "\r", " | ", " · "} {
				if j := strings.Index(rest, cut); j >= 0 {
					rest = rest[:j]
				}
			}

			rest = CleanText(rest)
			if rest != "" && len(rest) <= 80 {
				return rest
			}
		}
	}
	return ""
}
