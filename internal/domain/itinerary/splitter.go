package itinerary

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emphasisMarkup = regexp.MustCompile(`\*+|__+`)
	dayOneMarker   = regexp.MustCompile(`(?i)\bday 1\b`)
	summaryMarker  = regexp.MustCompile(`(?i)visually summariz(?:ing|e):?`)
)

var promptPrefixes = [...]string{"1.", "2.", "3.", "4."}

// fallbackPrompts are used, by slot, when the model produced fewer than four prompts.
var fallbackPrompts = [PromptCount]string{
	"A famous landmark in %s, showcasing its iconic architecture.",
	"A beautiful natural scene in %s, representing its scenic landscapes.",
	"A snapshot of local culture in %s, highlighting traditional activities or events.",
	"A depiction of daily life in %s, capturing the essence of the local community.",
}

// Split separates the itinerary narrative from the trailing "visually summarize" block
// and always returns exactly four prompts, padding missing slots for destination.
func Split(raw, destination string) Text {
	cleaned := emphasisMarkup.ReplaceAllString(raw, "")
	if loc := dayOneMarker.FindStringIndex(cleaned); loc != nil {
		cleaned = cleaned[loc[0]:]
	}

	var (
		narrative = cleaned
		extracted []string
	)
	if loc := summaryMarker.FindStringIndex(cleaned); loc != nil {
		narrative = strings.TrimSpace(cleaned[:loc[0]])
		extracted = extractPrompts(strings.TrimSpace(cleaned[loc[1]:]))
	}

	return Text{
		Narrative: narrative,
		Prompts:   padPrompts(extracted, destination),
	}
}

func extractPrompts(block string) []string {
	var prompts []string
	for _, line := range strings.Split(block, "\n") {
		if !isPromptLine(line) {
			continue
		}
		text := line
		if _, after, ok := strings.Cut(line, ". "); ok {
			text = after
		}
		prompts = append(prompts, strings.TrimSpace(text))
	}
	return prompts
}

func isPromptLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, prefix := range promptPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func padPrompts(extracted []string, destination string) [PromptCount]string {
	var out [PromptCount]string
	n := copy(out[:], extracted)
	for i := n; i < PromptCount; i++ {
		out[i] = FallbackPrompt(i, destination)
	}
	return out
}

// FallbackPrompt returns the fixed description used for slot i (0-based).
func FallbackPrompt(slot int, destination string) string {
	return fmt.Sprintf(fallbackPrompts[slot], destination)
}
