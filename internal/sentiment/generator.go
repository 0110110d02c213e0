package sentiment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultModelName identifies the Gemini model used for classification.
	DefaultModelName = "gemini-2.0-flash"

	apiKeyRequiredMessageConstant          = "gemini api key must be provided"
	clientCreationErrorTemplateConstant    = "failed to create gemini client: %w"
	contentGenerationErrorTemplateConstant = "content generation failed: %w"
	quotaExhaustedStatusFragmentConstant   = "RESOURCE_EXHAUSTED"
)

// ErrAPIKeyRequired indicates the Gemini API key option was empty.
var ErrAPIKeyRequired = errors.New(apiKeyRequiredMessageConstant)

// ContentGenerator produces model output for a prompt.
type ContentGenerator interface {
	GenerateText(executionContext context.Context, prompt string) (string, error)
}

// GeminiGenerator implements ContentGenerator against the Gemini API.
type GeminiGenerator struct {
	client    *genai.Client
	modelName string
}

// NewGeminiGenerator constructs a generator for the supplied API key and model.
func NewGeminiGenerator(executionContext context.Context, apiKey string, modelName string) (*GeminiGenerator, error) {
	trimmedAPIKey := strings.TrimSpace(apiKey)
	if len(trimmedAPIKey) == 0 {
		return nil, ErrAPIKeyRequired
	}

	trimmedModelName := strings.TrimSpace(modelName)
	if len(trimmedModelName) == 0 {
		trimmedModelName = DefaultModelName
	}

	geminiClient, clientError := genai.NewClient(executionContext, &genai.ClientConfig{APIKey: trimmedAPIKey})
	if clientError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}

	return &GeminiGenerator{client: geminiClient, modelName: trimmedModelName}, nil
}

// GenerateText submits the prompt and returns the model's trimmed text response.
func (generator *GeminiGenerator) GenerateText(executionContext context.Context, prompt string) (string, error) {
	generationResponse, generationError := generator.client.Models.GenerateContent(
		executionContext,
		generator.modelName,
		genai.Text(prompt),
		nil,
	)
	if generationError != nil {
		return "", fmt.Errorf(contentGenerationErrorTemplateConstant, generationError)
	}

	return strings.TrimSpace(generationResponse.Text()), nil
}

// IsQuotaExhausted reports whether the failure indicates API quota exhaustion.
func IsQuotaExhausted(failure error) bool {
	if failure == nil {
		return false
	}

	var apiError genai.APIError
	if errors.As(failure, &apiError) {
		return apiError.Code == http.StatusTooManyRequests
	}

	failureText := failure.Error()
	return strings.Contains(failureText, quotaExhaustedStatusFragmentConstant)
}
