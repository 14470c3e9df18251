package changelog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gitt-tools/gitt/internal/history"
	"github.com/gitt-tools/gitt/internal/llm"
)

const (
	generationFallbackLogMessageConstant = "ai generation degraded to basic changelog"
	logFieldDegradedReasonConstant       = "reason"

	// ReasonAIDisabled marks generation runs where the caller opted out of AI.
	ReasonAIDisabled = "ai disabled"
	// ReasonMissingCredential marks runs without a configured API key.
	ReasonMissingCredential = "missing api credential"
	// ReasonEmptyResponse marks runs where the model returned no text.
	ReasonEmptyResponse = "empty ai response"
)

// GenerationMode tags how a changelog entry was produced.
type GenerationMode string

// Generation outcome tags.
const (
	GenerationModeAI       GenerationMode = "ai"
	GenerationModeFallback GenerationMode = "fallback"
	GenerationModeEmpty    GenerationMode = "empty"
)

// GenerationResult carries the produced document and its outcome tag.
type GenerationResult struct {
	Mode           GenerationMode `json:"mode"`
	Content        string         `json:"content"`
	DegradedReason string         `json:"degraded_reason,omitempty"`
}

// Generator produces changelog entries, preferring the AI collaborator.
type Generator struct {
	client llm.ChatClient
	clock  history.Clock
	logger *zap.Logger
}

// NewGenerator constructs a generator. A nil client forces the basic renderer
// with the provided degradation reason recorded on every result.
func NewGenerator(client llm.ChatClient, clock history.Clock, logger *zap.Logger) *Generator {
	if clock == nil {
		clock = history.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, clock: clock, logger: logger}
}

// Generate builds a changelog entry for the parsed commits.
//
// The AI collaborator is attempted exactly once; any failure or empty
// response degrades to the deterministic renderer rather than surfacing an
// error. An empty commit sequence yields the empty outcome with no content.
func (generator *Generator) Generate(executionContext context.Context, records []history.CommitRecord, version string, degradedReason string) GenerationResult {
	if len(records) == 0 {
		return GenerationResult{Mode: GenerationModeEmpty}
	}

	if generator.client == nil {
		return generator.fallback(records, version, degradedReason)
	}

	responseText, generationError := generator.client.Generate(executionContext, BuildPrompt(records, version))
	if generationError != nil {
		return generator.fallback(records, version, generationError.Error())
	}
	if len(strings.TrimSpace(responseText)) == 0 {
		return generator.fallback(records, version, ReasonEmptyResponse)
	}

	return GenerationResult{Mode: GenerationModeAI, Content: responseText}
}

func (generator *Generator) fallback(records []history.CommitRecord, version string, degradedReason string) GenerationResult {
	generator.logger.Info(generationFallbackLogMessageConstant, zap.String(logFieldDegradedReasonConstant, degradedReason))
	categorized := history.Categorize(records)
	return GenerationResult{
		Mode:           GenerationModeFallback,
		Content:        RenderBasic(categorized, version, generator.clock),
		DegradedReason: degradedReason,
	}
}
