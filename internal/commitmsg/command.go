package commitmsg

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitt-tools/gitt/internal/credentials"
	"github.com/gitt-tools/gitt/internal/dependencies"
	"github.com/gitt-tools/gitt/internal/execshell"
	"github.com/gitt-tools/gitt/internal/gitrepo"
	"github.com/gitt-tools/gitt/internal/llm"
)

const (
	commandNameConstant             = "commit"
	commandUsageConstant            = "commit [paths...]"
	commandShortDescriptionConstant = "Stage changes and commit with a drafted message"
	commandLongDescriptionConstant  = "commit inspects the working tree, drafts a commit message from the staged diff and recent history with the AI collaborator, stages the requested paths (all changes when none are given), and records the commit."

	flagMessageNameConstant  = "message"
	flagMessageUsageConstant = "Commit message to use verbatim, skipping AI drafting"
	flagTypeNameConstant     = "type"
	flagTypeUsageConstant    = "Commit type prefixed to the message as [type]"
	flagSuggestNameConstant  = "suggest"
	flagSuggestUsageConstant = "Print the drafted message without committing"

	cleanTreeMessageConstant         = "Nothing to commit, working tree clean"
	degradedMessageTemplateConstant  = "AI drafting unavailable (%s); using status summary\n"
	committedMessageTemplateConstant = "Committed: %s\n"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// APIKeyResolver resolves the Gemini credential, empty when unavailable.
type APIKeyResolver func() string

// CommandBuilder assembles the commit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           gitrepo.GitExecutor
	CommandEventsObserver execshell.CommandEventObserver
	WorkingDirectory      string
	ConfigurationProvider func() CommandConfiguration
	ClientFactory         llm.ClientFactory
	APIKeyResolver        APIKeyResolver
}

// Build constructs the cobra command for the commit workflow.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUsageConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(flagMessageNameConstant, "m", "", flagMessageUsageConstant)
	command.Flags().String(flagTypeNameConstant, "", flagTypeUsageConstant)
	command.Flags().Bool(flagSuggestNameConstant, false, flagSuggestUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	messageValue, _ := command.Flags().GetString(flagMessageNameConstant)
	typeValue, _ := command.Flags().GetString(flagTypeNameConstant)
	suggestValue, _ := command.Flags().GetBool(flagSuggestNameConstant)

	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.CommandEventsObserver)
	if executorError != nil {
		return executorError
	}
	repositoryManager, managerError := dependencies.ResolveRepositoryManager(nil, gitExecutor)
	if managerError != nil {
		return managerError
	}

	repositoryPath := builder.resolveWorkingDirectory()
	if !repositoryManager.IsRepository(command.Context(), repositoryPath) {
		return gitrepo.ErrNotARepository
	}

	workingTreeChanges := repositoryManager.Status(command.Context(), repositoryPath)
	if len(workingTreeChanges) == 0 {
		fmt.Fprintln(command.OutOrStdout(), cleanTreeMessageConstant)
		return nil
	}

	finalMessage := strings.TrimSpace(messageValue)
	if len(finalMessage) > 0 {
		finalMessage = ApplyTypePrefix(finalMessage, typeValue)
	} else {
		changeContext := ChangeContext{
			Changes:        workingTreeChanges,
			Diff:           repositoryManager.Diff(command.Context(), repositoryPath, arguments),
			DiffStat:       repositoryManager.DiffStat(command.Context(), repositoryPath, arguments),
			RecentSubjects: repositoryManager.RecentSubjects(command.Context(), repositoryPath, DefaultRecentSubjectLimit),
		}

		chatClient, degradedReason := builder.resolveChatClient(command, configuration.Model)
		suggester := NewSuggester(chatClient, logger)
		suggestionResult := suggester.Suggest(command.Context(), changeContext, typeValue, degradedReason)
		if suggestionResult.Mode == SuggestionModeFallback && len(suggestionResult.DegradedReason) > 0 {
			fmt.Fprintf(command.ErrOrStderr(), degradedMessageTemplateConstant, suggestionResult.DegradedReason)
		}
		finalMessage = suggestionResult.Message
	}

	if suggestValue {
		fmt.Fprintln(command.OutOrStdout(), finalMessage)
		return nil
	}

	if stagingError := repositoryManager.StageFiles(command.Context(), repositoryPath, arguments); stagingError != nil {
		return stagingError
	}
	if commitError := repositoryManager.CreateCommit(command.Context(), repositoryPath, finalMessage); commitError != nil {
		return commitError
	}

	fmt.Fprintf(command.OutOrStdout(), committedMessageTemplateConstant, firstLine(finalMessage))
	return nil
}

func (builder *CommandBuilder) resolveChatClient(command *cobra.Command, model string) (llm.ChatClient, string) {
	apiKey := builder.resolveAPIKey()
	if len(apiKey) == 0 {
		return nil, ReasonMissingCredential
	}

	clientFactory := builder.ClientFactory
	if clientFactory == nil {
		clientFactory = llm.NewGeminiChatClient
	}

	chatClient, clientError := clientFactory(command.Context(), llm.Config{APIKey: apiKey, Model: model})
	if clientError != nil {
		return nil, clientError.Error()
	}
	return chatClient, ""
}

func (builder *CommandBuilder) resolveAPIKey() string {
	if builder.APIKeyResolver != nil {
		return builder.APIKeyResolver()
	}

	credentialStore, storeError := credentials.NewDefaultStore()
	if storeError != nil {
		return ""
	}
	return credentialStore.APIKey()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveWorkingDirectory() string {
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "."
	}
	return workingDirectory
}

func firstLine(message string) string {
	if newlineIndex := strings.IndexByte(message, '\n'); newlineIndex >= 0 {
		return message[:newlineIndex]
	}
	return message
}
