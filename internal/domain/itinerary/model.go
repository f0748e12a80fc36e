package itinerary

import "github.com/yanqian/trip-planner/pkg/metrics"

// PromptCount is the number of illustrative image prompts paired with every itinerary.
const PromptCount = 4

// FailureMarker replaces an image URL that could not be produced.
const FailureMarker = "URL not available"

// Request captures the payload accepted by the daily plan endpoint.
type Request struct {
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// Response is serialized back to API consumers.
type Response struct {
	DailyPlan  string                   `json:"dailyPlan"`
	Prompts    [PromptCount]string      `json:"prompts"`
	Images     [PromptCount]ImageResult `json:"images"`
	TokenUsage *metrics.TokenUsage      `json:"tokenUsage,omitempty"`
}

// Text is an itinerary split into its narrative and exactly four image prompts.
type Text struct {
	Narrative string
	Prompts   [PromptCount]string
}

// ImageResult is either a rendered image URL or a failure marker with the reason.
type ImageResult struct {
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// Failed reports whether the slot holds a failure marker.
func (r ImageResult) Failed() bool {
	return r.URL == ""
}

func imageFailed(reason string) ImageResult {
	return ImageResult{Error: FailureMarker + ": " + reason}
}

// Config wires runtime dependencies for the itinerary domain.
type Config struct {
	Model            string
	Temperature      float32
	Prompt           string
	ImageModel       string
	ImageSize        string
	ImageConcurrency int
}
