package commitmsg

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gitt-tools/gitt/internal/llm"
)

const (
	suggestionFallbackLogMessageConstant = "ai suggestion degraded to status summary"
	suggestionLogFieldReasonConstant     = "reason"

	// ReasonAIDisabled marks suggestions drafted without the AI collaborator by request.
	ReasonAIDisabled = "ai disabled"
	// ReasonMissingCredential marks suggestions drafted without a configured API key.
	ReasonMissingCredential = "missing api credential"
	// ReasonEmptyResponse marks suggestions where the model returned no text.
	ReasonEmptyResponse = "empty ai response"

	fallbackSingleFileTemplateConstant = "Update %s"
	fallbackMultiFileTemplateConstant  = "Update %d files"
	fallbackBodyLineTemplateConstant   = "- %s: %s"
	fallbackEmptyTreeSummaryConstant   = "Update working tree"
	typePrefixTemplateConstant         = "[%s] %s"
)

// SuggestionMode tags how a commit message was produced.
type SuggestionMode string

// Suggestion modes.
const (
	SuggestionModeAI       SuggestionMode = "ai"
	SuggestionModeFallback SuggestionMode = "fallback"
)

// SuggestionResult reports the drafted message and how it was produced.
type SuggestionResult struct {
	Mode           SuggestionMode `json:"mode"`
	Message        string         `json:"message"`
	DegradedReason string         `json:"degraded_reason,omitempty"`
}

// Suggester drafts commit messages, preferring the AI collaborator.
type Suggester struct {
	client llm.ChatClient
	logger *zap.Logger
}

// NewSuggester constructs a suggester. A nil client forces the status summary
// with the provided degradation reason recorded on every result.
func NewSuggester(client llm.ChatClient, logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{client: client, logger: logger}
}

// Suggest drafts a commit message for the described change set. The AI
// collaborator is attempted exactly once; any failure degrades to a summary
// built from the porcelain status.
func (suggester *Suggester) Suggest(executionContext context.Context, changeContext ChangeContext, commitType string, degradedReason string) SuggestionResult {
	if suggester.client == nil {
		return suggester.fallback(changeContext, commitType, degradedReason)
	}

	responseText, suggestionError := suggester.client.Generate(executionContext, BuildPrompt(changeContext, commitType))
	if suggestionError != nil {
		return suggester.fallback(changeContext, commitType, suggestionError.Error())
	}
	trimmedResponse := strings.TrimSpace(responseText)
	if len(trimmedResponse) == 0 {
		return suggester.fallback(changeContext, commitType, ReasonEmptyResponse)
	}

	return SuggestionResult{Mode: SuggestionModeAI, Message: ApplyTypePrefix(trimmedResponse, commitType)}
}

func (suggester *Suggester) fallback(changeContext ChangeContext, commitType string, degradedReason string) SuggestionResult {
	suggester.logger.Info(suggestionFallbackLogMessageConstant, zap.String(suggestionLogFieldReasonConstant, degradedReason))
	return SuggestionResult{
		Mode:           SuggestionModeFallback,
		Message:        ApplyTypePrefix(summarizeChanges(changeContext), commitType),
		DegradedReason: degradedReason,
	}
}

// summarizeChanges builds the non-AI message from the porcelain status.
func summarizeChanges(changeContext ChangeContext) string {
	if len(changeContext.Changes) == 0 {
		return fallbackEmptyTreeSummaryConstant
	}

	title := fmt.Sprintf(fallbackMultiFileTemplateConstant, len(changeContext.Changes))
	if len(changeContext.Changes) == 1 {
		title = fmt.Sprintf(fallbackSingleFileTemplateConstant, changeContext.Changes[0].Path)
	}

	bodyLines := []string{}
	for _, fileChange := range changeContext.Changes {
		bodyLines = append(bodyLines, fmt.Sprintf(fallbackBodyLineTemplateConstant, fileChange.Path, fileChange.ChangeKind()))
	}
	if len(bodyLines) == 1 {
		return title
	}
	return title + "\n\n" + strings.Join(bodyLines, "\n")
}

// ApplyTypePrefix prepends "[type]" unless the message already carries a
// bracketed prefix or no type was requested.
func ApplyTypePrefix(message string, commitType string) string {
	trimmedMessage := strings.TrimSpace(message)
	if len(commitType) == 0 {
		return trimmedMessage
	}
	if strings.HasPrefix(trimmedMessage, "[") && strings.Contains(trimmedMessage, "]") {
		return trimmedMessage
	}
	return fmt.Sprintf(typePrefixTemplateConstant, commitType, trimmedMessage)
}
