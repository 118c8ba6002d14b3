package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/orderflow/orderflowgo/internal/models"
)

// Extractor converts raw operator input into candidate order records.
// Implementations treat their output as untrusted until parsed and
// validated; callers get either a complete batch or an error.
type Extractor interface {
	ExtractText(ctx context.Context, text string) ([]models.OrderRecord, error)
	ExtractImage(ctx context.Context, data []byte, mimeType string) ([]models.OrderRecord, error)
}

// GeminiClient interacts with Google Gemini API using the official SDK
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini API client
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-3-flash-preview"
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// Close closes the client connection
func (c *GeminiClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// ExtractText extracts order records from pasted raw text
func (c *GeminiClient) ExtractText(ctx context.Context, text string) ([]models.OrderRecord, error) {
	return c.extract(ctx, genai.Text(ExtractionPrompt+"\n\nInput data:\n"+text))
}

// ExtractImage extracts order records from an uploaded screenshot
func (c *GeminiClient) ExtractImage(ctx context.Context, data []byte, mimeType string) ([]models.OrderRecord, error) {
	format := strings.TrimPrefix(mimeType, "image/")
	return c.extract(ctx, genai.ImageData(format, data), genai.Text(ExtractionPrompt))
}

func (c *GeminiClient) extract(ctx context.Context, parts ...genai.Part) ([]models.OrderRecord, error) {
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		log.Printf("❌ Gemini API error: %v", err)
		return nil, ErrExtraction
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Printf("❌ Gemini returned an empty response")
		return nil, ErrExtraction
	}

	var fullText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText += string(txt)
		}
	}

	orders, err := ParseOrders(fullText)
	if err != nil {
		log.Printf("❌ Gemini response rejected: %v", err)
		return nil, ErrExtraction
	}
	return orders, nil
}
