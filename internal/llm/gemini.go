package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"

	missingAPIKeyMessageConstant        = "gemini api key is required"
	clientCreationErrorTemplateConstant = "unable to create gemini client: %w"
	generationErrorTemplateConstant     = "gemini generation failed: %w"
	emptyCandidatesMessageConstant      = "gemini returned no candidates"
	emptyContentMessageConstant         = "gemini returned an empty response"
	plainTextMIMETypeConstant           = "text/plain"
)

// Config carries the credentials and model selection for a chat client.
type Config struct {
	APIKey string
	Model  string
}

// ChatClient produces one free-text response per prompt.
type ChatClient interface {
	Generate(executionContext context.Context, prompt string) (string, error)
}

// ClientFactory constructs a ChatClient from configuration.
type ClientFactory func(executionContext context.Context, config Config) (ChatClient, error)

// GeminiClient implements ChatClient over the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient constructs a Gemini-backed chat client, failing fast on a missing key.
func NewGeminiClient(executionContext context.Context, config Config) (*GeminiClient, error) {
	if len(strings.TrimSpace(config.APIKey)) == 0 {
		return nil, errors.New(missingAPIKeyMessageConstant)
	}

	client, clientError := genai.NewClient(executionContext, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if clientError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}

	model := config.Model
	if len(model) == 0 {
		model = DefaultModel
	}

	return &GeminiClient{client: client, model: model}, nil
}

// NewGeminiChatClient adapts NewGeminiClient to the ClientFactory signature.
func NewGeminiChatClient(executionContext context.Context, config Config) (ChatClient, error) {
	return NewGeminiClient(executionContext, config)
}

// Generate requests a single plain-text completion for the prompt.
func (geminiClient *GeminiClient) Generate(executionContext context.Context, prompt string) (string, error) {
	generationConfiguration := &genai.GenerateContentConfig{ResponseMIMEType: plainTextMIMETypeConstant}
	contents := []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}

	generationResult, generationError := geminiClient.client.Models.GenerateContent(executionContext, geminiClient.model, contents, generationConfiguration)
	if generationError != nil {
		return "", fmt.Errorf(generationErrorTemplateConstant, generationError)
	}

	if len(generationResult.Candidates) == 0 {
		return "", errors.New(emptyCandidatesMessageConstant)
	}

	candidate := generationResult.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New(emptyContentMessageConstant)
	}

	responseText := strings.TrimSpace(candidate.Content.Parts[0].Text)
	if len(responseText) == 0 {
		return "", errors.New(emptyContentMessageConstant)
	}
	return responseText, nil
}
