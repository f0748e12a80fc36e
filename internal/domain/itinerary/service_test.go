package itinerary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/trip-planner/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/trip-planner/pkg/errors"
)

func TestServicePlanSuccess(t *testing.T) {
	chat := &stubChatClient{content: "Here you go!\nDay 1: Arrive.\nDay 2: Explore.\nvisually summarize:\n1. Castle at dusk.\n2. River cruise."}
	images := &stubImageClient{
		respond: func(prompt string) (chatgpt.ImageResponse, error) {
			if prompt == "River cruise." {
				return chatgpt.ImageResponse{}, errors.New("rate limited")
			}
			return imageResponse("https://img.example/ok.png"), nil
		},
	}
	svc := newTestService(chat, images)

	resp, err := svc.Plan(context.Background(), Request{Destination: " Prague ", StartDate: "2025-05-03", EndDate: "2025-05-05"})
	require.NoError(t, err)

	require.Equal(t, "Day 1: Arrive.\nDay 2: Explore.", resp.DailyPlan)
	require.Equal(t, "Castle at dusk.", resp.Prompts[0])
	require.Equal(t, FallbackPrompt(2, "Prague"), resp.Prompts[2])
	require.False(t, resp.Images[0].Failed())
	require.True(t, resp.Images[1].Failed())
	require.False(t, resp.Images[2].Failed())
	require.False(t, resp.Images[3].Failed())
	require.NotNil(t, resp.TokenUsage)

	userPrompt := chat.lastRequest.Messages[1].Content
	require.Contains(t, userPrompt, "trip to Prague from May 03 to May 05")
	require.Contains(t, userPrompt, "visually summarize:")
	require.Equal(t, "You are a travel guide and a creative advisor for visual content.", chat.lastRequest.Messages[0].Content)
}

func TestServicePlanInvalidInput(t *testing.T) {
	svc := newTestService(&stubChatClient{}, &stubImageClient{})

	_, err := svc.Plan(context.Background(), Request{Destination: "", StartDate: "2025-05-03", EndDate: "2025-05-05"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Plan(context.Background(), Request{Destination: "Rome", StartDate: "May 3", EndDate: "2025-05-05"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServicePlanLLMFailure(t *testing.T) {
	images := &stubImageClient{}
	svc := newTestService(&stubChatClient{err: errors.New("boom")}, images)

	_, err := svc.Plan(context.Background(), Request{Destination: "Rome", StartDate: "2025-05-03", EndDate: "2025-05-05"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
	require.Zero(t, images.callCount())
}

func newTestService(chat ChatClient, images ImageClient) Service {
	cfg := Config{Model: "gpt-test"}
	return NewService(cfg, chat, NewRenderer(cfg, images, discardLogger()), discardLogger())
}

type stubChatClient struct {
	content     string
	err         error
	lastRequest chatgpt.ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.lastRequest = req
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	return chatgpt.ChatCompletionResponse{
		Choices: []chatgpt.Choice{{Message: chatgpt.Message{Role: "assistant", Content: s.content}}},
		Usage:   &chatgpt.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}
