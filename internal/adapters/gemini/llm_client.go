package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/lovescan/internal/adapters/llm"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxChatSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxChatSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(llm.SystemPrompt))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxChatSize:   maxChatSize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// ModelName returns the configured model
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// AnalyzeChat asks Gemini for a chat risk verdict
func (c *GeminiClient) AnalyzeChat(ctx context.Context, text string) (*core.RiskFinding, error) {
	prompt := llm.BuildPrompt(c.textProcessor.PrepareChat(text, c.maxChatSize))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	reply, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Gemini chat verdict received", zap.String("model", c.modelName))

	finding, err := llm.ParseVerdict(reply, c.modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Gemini verdict: %w", err)
	}

	return finding, nil
}

// Close releases the underlying client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("empty content in Gemini response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in Gemini response")
	}

	return sb.String(), nil
}
