package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

var locationPrefixes = []string{"Location:", "LOCATIONS:", "Locations:", "Localização:", "Local:"}

// NormalizeLocation strips label prefixes and repeated comma parts:
// "Location: Recife, recife, Brazil" -> "Recife, Brazil".
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}
	for _, p := range locationPrefixes {
		loc = strings.TrimPrefix(loc, p)
	}
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

var workModeHints = []struct {
	mode  string
	words []string
}{
	{"Remote", []string{"remote", "remoto", "home office", "anywhere"}},
	{"Hybrid", []string{"hybrid", "híbrido", "hibrido"}},
	{"Onsite", []string{"on-site", "onsite", "on site", "presencial"}},
}

// InferWorkModeFromText returns Remote, Hybrid, Onsite or Unknown from the
// first matching hint across location, title and description.
func InferWorkModeFromText(location, title, desc string) string {
	blob := strings.ToLower(strings.Join([]string{location, title, desc}, " "))
	for _, h := range workModeHints {
		for _, w := range h.words {
			if strings.Contains(blob, w) {
				return h.mode
			}
		}
	}
	return "Unknown"
}
