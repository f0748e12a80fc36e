package trip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/trip-planner/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/trip-planner/pkg/errors"
	"github.com/yanqian/trip-planner/pkg/util"
)

const defaultDestinationCount = 5

// Service exposes budget-bound destination suggestions.
type Service interface {
	Suggest(ctx context.Context, req Request) (Response, error)
}

// ChatClient generates the advisory text.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	cfg    Config
	client ChatClient
	pricer *Pricer
	logger *slog.Logger
}

// NewService wires up the trip suggestion domain.
func NewService(cfg Config, client ChatClient, pricer *Pricer, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		client: client,
		pricer: pricer,
		logger: logger.With("component", "trip.service"),
	}
}

func (s *service) Suggest(ctx context.Context, req Request) (Response, error) {
	start, end, err := util.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "dates must be formatted as YYYY-MM-DD", err)
	}
	if req.Budget <= 0 {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "budget must be positive", nil)
	}
	tripType := strings.TrimSpace(req.TripType)
	if tripType == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "tripType cannot be empty", nil)
	}

	messages := []chatgpt.Message{
		{Role: "system", Content: s.systemPrompt()},
		{Role: "user", Content: s.advisoryPrompt(req.Budget, tripType, start.Format("January"))},
	}
	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
	})
	// An unavailable advisor yields no suggestions rather than a failed request.
	if err != nil {
		s.logger.Warn("advisory generation failed", "budget", req.Budget, "trip_type", tripType, "error", err)
		return emptyResponse(), nil
	}
	if len(completion.Choices) == 0 {
		s.logger.Warn("advisory generation returned no choices", "budget", req.Budget, "trip_type", tripType)
		return emptyResponse(), nil
	}

	advisory := completion.Choices[0].Message.Content
	candidates := ParseCandidates(advisory)
	if len(candidates) == 0 {
		candidates = ParseCandidatesWithoutSummary(advisory)
	}
	if len(candidates) == 0 {
		s.logger.Warn("advisory text contained no destinations", "content", advisory)
	}
	s.logger.Info("pricing destinations", "candidates", len(candidates), "budget", req.Budget, "trip_type", tripType)

	priced := s.pricer.PriceCandidates(ctx, candidates, start, end, req.Budget)
	suggestions, err := Aggregate(priced)
	if err != nil {
		return Response{}, err
	}

	usage := completion.TokenUsage(s.cfg.Model, messages)
	s.logger.Info("suggestions priced", "total_tokens", usage.TotalTokens, "estimated_tokens", usage.Estimated)
	res := Response{Suggestions: suggestions}
	if !usage.IsZero() {
		res.TokenUsage = &usage
	}
	return res, nil
}

func emptyResponse() Response {
	return Response{Suggestions: []PricedCandidate{}}
}

func (s *service) systemPrompt() string {
	if prompt := strings.TrimSpace(s.cfg.Prompt); prompt != "" {
		return prompt
	}
	return "You are a travel advisor."
}

func (s *service) advisoryPrompt(budget int, tripType, month string) string {
	count := s.cfg.DestinationCount
	if count <= 0 {
		count = defaultDestinationCount
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Given a budget of $%d for a %s trip in the month of %s, suggest %d destinations worldwide. ", budget, tripType, month, count)
	b.WriteString("Please provide the response in the following format:")
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&b, "\n%d. Destination, Country (Airport Code) - Description", i)
	}
	return b.String()
}
