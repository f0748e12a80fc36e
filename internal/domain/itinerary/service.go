package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/trip-planner/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/trip-planner/pkg/errors"
	"github.com/yanqian/trip-planner/pkg/util"
)

// Service produces a day-by-day plan with four rendered illustrations.
type Service interface {
	Plan(ctx context.Context, req Request) (Response, error)
}

// ChatClient generates the itinerary text.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	cfg      Config
	client   ChatClient
	renderer *Renderer
	logger   *slog.Logger
}

// NewService wires up the itinerary domain.
func NewService(cfg Config, client ChatClient, renderer *Renderer, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		client:   client,
		renderer: renderer,
		logger:   logger.With("component", "itinerary.service"),
	}
}

func (s *service) Plan(ctx context.Context, req Request) (Response, error) {
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "destination cannot be empty", nil)
	}
	start, end, err := util.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "dates must be formatted as YYYY-MM-DD", err)
	}

	messages := []chatgpt.Message{
		{Role: "system", Content: s.systemPrompt()},
		{Role: "user", Content: buildPlanPrompt(destination, start.Format("January 02"), end.Format("January 02"))},
	}
	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt request failed", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt returned no choices", nil)
	}

	text := Split(completion.Choices[0].Message.Content, destination)
	s.logger.Debug("itinerary split", "destination", destination, "narrative_len", len(text.Narrative))

	images := s.renderer.Render(ctx, text.Prompts)
	failed := 0
	for _, img := range images {
		if img.Failed() {
			failed++
		}
	}
	usage := completion.TokenUsage(s.cfg.Model, messages)
	s.logger.Info("itinerary generated",
		"destination", destination,
		"images_failed", failed,
		"total_tokens", usage.TotalTokens,
		"estimated_tokens", usage.Estimated,
	)

	res := Response{
		DailyPlan: text.Narrative,
		Prompts:   text.Prompts,
		Images:    images,
	}
	if !usage.IsZero() {
		res.TokenUsage = &usage
	}
	return res, nil
}

func (s *service) systemPrompt() string {
	if prompt := strings.TrimSpace(s.cfg.Prompt); prompt != "" {
		return prompt
	}
	return "You are a travel guide and a creative advisor for visual content."
}

func buildPlanPrompt(destination, from, to string) string {
	return fmt.Sprintf("I am planning a trip to %s from %s to %s. ", destination, from, to) +
		"Please suggest a detailed daily itinerary for the whole trip, from the start day to the end date. " +
		"At the end provide exactly 4 descriptions that could visually summarize the entire trip. " +
		"Make the descriptions clear and detailed. Use this format for the 4 descriptions: visually summarize: \n" +
		"1. A picture of the Eiffel Tower at sunset, symbolizing the iconic landmark of Paris.\n" +
		"2. A snapshot of colorful flowers in full bloom at the gardens of Versailles, representing the beauty of French landscapes.\n" +
		"3. An image of the Seine River with historic bridges in the background, showcasing the romantic charm of Paris.\n" +
		"4. A shot of street artists painting in Montmartre, capturing the artistic spirit and bohemian vibe of the neighborhood."
}
