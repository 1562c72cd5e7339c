package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrAIEmptyResponse is returned when the model answers without any choice.
var ErrAIEmptyResponse = errors.New("no response from OpenAI")

// ChatCompleter is the part of the OpenAI client the AIService uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client ChatCompleter
	model  string
}

// SuggestedTask is a task extracted from free text. It is never persisted.
type SuggestedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithClient(openai.NewClient(apiKey), openai.GPT4o)
}

// NewAIServiceWithClient creates an AIService around any ChatCompleter.
func NewAIServiceWithClient(client ChatCompleter, model string) *AIService {
	return &AIService{
		client: client,
		model:  model,
	}
}

const suggestionPrompt = `You extract concrete, actionable tasks from the text below.

Text:
%s

Respond with a JSON object of this shape and nothing else:
{"tasks": [{"title": "short task title", "description": "one or two sentences of detail"}]}

Rules:
- Return {"tasks": []} when the text contains no tasks.
- Keep titles under 200 characters and descriptions under 1000 characters.`

// SuggestTasks asks the model for tasks contained in text.
func (s *AIService) SuggestTasks(ctx context.Context, text string) ([]SuggestedTask, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(suggestionPrompt, text),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrAIEmptyResponse
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

// parseSuggestions accepts {"tasks": [...]} or a bare array, optionally
// wrapped in a markdown code fence.
func parseSuggestions(content string) ([]SuggestedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var tasks []SuggestedTask
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &tasks); err != nil {
			return nil, fmt.Errorf("failed to parse AI response: %w", err)
		}
		return tasks, nil
	}

	var wrapped struct {
		Tasks []SuggestedTask `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return wrapped.Tasks, nil
}
