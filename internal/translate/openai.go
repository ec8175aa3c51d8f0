package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Model using OpenAI Chat Completions (or any compatible endpoint)
type OpenAIModel struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAIModel(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIModel{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (m *OpenAIModel) Complete(ctx context.Context, req Request) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    m.model,
	}
	if m.options.Temperature != nil {
		params.Temperature = openai.Float(*m.options.Temperature)
	}
	if m.options.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(m.options.MaxTokens))
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	return m.parseResponse(completion)
}

func (m *OpenAIModel) parseResponse(completion *openai.ChatCompletion) (string, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return "", fmt.Errorf("no text in OpenAI response (finish reason: %s)",
			completion.Choices[0].FinishReason)
	}
	return responseText, nil
}

func (m *OpenAIModel) Close() error {
	return nil
}
