package trip

import (
	"regexp"
	"strings"
)

var (
	// N. City, Country (CODE) - Description, optionally after list or heading markup ("### ", "- ").
	candidateLine = regexp.MustCompile(`^[^\d\n]*?\d+\.\s*(.+?)\s*,\s*(.+?)\s*\(([^)]+)\)\s*[-–—]\s*(.*?)\s*$`)
	// N. City, Country (CODE)
	candidateLineBare = regexp.MustCompile(`^[^\d\n]*?\d+\.\s*(.+?)\s*,\s*(.+?)\s*\(([^)]+)\)\s*$`)
)

// ParseCandidates extracts one candidate per numbered advisory line, in source order.
// Lines that do not match are skipped; no matches yields an empty slice.
func ParseCandidates(text string) []Candidate {
	return parseLines(text, candidateLine, true)
}

// ParseCandidatesWithoutSummary handles advisory variants that omit the description.
// Summary is left nil on every candidate.
func ParseCandidatesWithoutSummary(text string) []Candidate {
	return parseLines(text, candidateLineBare, false)
}

func parseLines(text string, pattern *regexp.Regexp, withSummary bool) []Candidate {
	out := make([]Candidate, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(strings.TrimRight(line, "\r"), "*", "")
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		code := firstAirportCode(match[3])
		if code == "" {
			continue
		}
		candidate := Candidate{
			City:        strings.TrimSpace(match[1]),
			Country:     strings.TrimSpace(match[2]),
			AirportCode: code,
		}
		if withSummary {
			summary := match[4]
			candidate.Summary = &summary
		}
		out = append(out, candidate)
	}
	return out
}

// firstAirportCode keeps the first segment of "JFK/LGA" style codes.
func firstAirportCode(raw string) string {
	first, _, _ := strings.Cut(raw, "/")
	return strings.TrimSpace(first)
}
