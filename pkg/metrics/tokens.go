package metrics

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

var encoders sync.Map // model -> *tiktoken.Tiktoken

// CountTokens returns the number of BPE tokens text encodes to for model.
// Unknown models use cl100k_base; ok is false when no encoding could be loaded.
func CountTokens(model, text string) (count int, ok bool) {
	enc, err := encoderFor(model)
	if err != nil {
		return 0, false
	}
	return len(enc.Encode(text, nil, nil)), true
}

// EstimateUsage approximates usage for providers that omit it from responses.
func EstimateUsage(model string, prompt []string, completion string) TokenUsage {
	usage := TokenUsage{Estimated: true}
	for _, part := range prompt {
		n, ok := CountTokens(model, part)
		if !ok {
			return TokenUsage{}
		}
		usage.PromptTokens += n
	}
	n, _ := CountTokens(model, completion)
	usage.CompletionTokens = n
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return usage
}

func encoderFor(model string) (*tiktoken.Tiktoken, error) {
	if cached, ok := encoders.Load(model); ok {
		return cached.(*tiktoken.Tiktoken), nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	encoders.Store(model, enc)
	return enc, nil
}
