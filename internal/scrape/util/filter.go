package util

import "strings"

// MatchesTerm reports whether the search term appears in the title or the
// description. Boards return everything they list, so the term is applied here.
func MatchesTerm(term, title, desc string) bool {
	n := strings.ToLower(strings.TrimSpace(term))
	if n == "" {
		return true
	}
	text := strings.ToLower(title + " " + desc)
	if strings.Contains(text, n) {
		return true
	}
	// every word of a multi-word term, in any order
	for _, w := range strings.Fields(n) {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}

// PassesLocation checks a posting's location against the query location.
// Remote postings pass unless remote is explicitly false; onsite postings fail
// when remote-only was requested.
func PassesLocation(queryLoc, jobLoc, workMode string, remote *bool) bool {
	isRemote := strings.EqualFold(workMode, "remote")

	if remote != nil {
		if *remote && !isRemote {
			return false
		}
		if !*remote && isRemote {
			return false
		}
	}
	if isRemote {
		return true
	}

	want := strings.ToLower(strings.TrimSpace(queryLoc))
	if want == "" {
		return true
	}
	text := strings.ToLower(jobLoc)
	if text == "" {
		return false
	}

	// "Recife, Pernambuco" matches a posting in "Recife" or in "Pernambuco"
	for _, part := range strings.Split(want, ",") {
		part = strings.TrimSpace(part)
		if part != "" && strings.Contains(text, part) {
			return true
		}
	}
	return false
}
