package changelog

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitt-tools/gitt/internal/credentials"
	"github.com/gitt-tools/gitt/internal/dependencies"
	"github.com/gitt-tools/gitt/internal/execshell"
	"github.com/gitt-tools/gitt/internal/gitrepo"
	"github.com/gitt-tools/gitt/internal/history"
	"github.com/gitt-tools/gitt/internal/llm"
)

const (
	commandNameConstant             = "changelog"
	commandShortDescriptionConstant = "Assemble a changelog entry from commit history"
	commandLongDescriptionConstant  = "changelog parses tagged commit subjects from git history and drafts a Markdown changelog entry, preferring AI generation and degrading to a deterministic category listing."

	flagSinceNameConstant      = "since"
	flagSinceUsageConstant     = "Include commits since this date (for example \"2024-01-01\" or \"1 week ago\")"
	flagUntilNameConstant      = "until"
	flagUntilUsageConstant     = "Include commits until this date"
	flagVersionNameConstant    = "version"
	flagVersionUsageConstant   = "Version label for the changelog entry"
	flagOutputNameConstant     = "output"
	flagOutputUsageConstant    = "Output file for the changelog entry"
	flagNoAINameConstant       = "no-ai"
	flagNoAIUsageConstant      = "Generate the basic changelog without the AI collaborator"
	flagPrintOnlyNameConstant  = "print-only"
	flagPrintOnlyUsageConstant = "Print the changelog to stdout instead of writing a file"

	noCommitsMessageConstant           = "No commits found for the specified criteria"
	commitCountMessageTemplateConstant = "Found %d commits\n"
	degradedMessageTemplateConstant    = "AI generation unavailable (%s); using basic changelog\n"
	writtenMessageTemplateConstant     = "Changelog written to %s\n"
	writeErrorTemplateConstant         = "unable to write changelog: %w"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// APIKeyResolver resolves the Gemini credential, empty when unavailable.
type APIKeyResolver func() string

// CommandBuilder assembles the changelog cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           gitrepo.GitExecutor
	CommandEventsObserver execshell.CommandEventObserver
	WorkingDirectory      string
	ConfigurationProvider func() CommandConfiguration
	ClientFactory         llm.ClientFactory
	APIKeyResolver        APIKeyResolver
	Clock                 history.Clock
}

// Build constructs the cobra command for the changelog workflow.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagSinceNameConstant, "", flagSinceUsageConstant)
	command.Flags().String(flagUntilNameConstant, "", flagUntilUsageConstant)
	command.Flags().String(flagVersionNameConstant, "", flagVersionUsageConstant)
	command.Flags().String(flagOutputNameConstant, DefaultOutputFileName, flagOutputUsageConstant)
	command.Flags().Bool(flagNoAINameConstant, false, flagNoAIUsageConstant)
	command.Flags().Bool(flagPrintOnlyNameConstant, false, flagPrintOnlyUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	sinceValue, _ := command.Flags().GetString(flagSinceNameConstant)
	untilValue, _ := command.Flags().GetString(flagUntilNameConstant)
	versionValue, _ := command.Flags().GetString(flagVersionNameConstant)
	outputValue, _ := command.Flags().GetString(flagOutputNameConstant)
	noAIValue, _ := command.Flags().GetBool(flagNoAINameConstant)
	printOnlyValue, _ := command.Flags().GetBool(flagPrintOnlyNameConstant)

	configuration := builder.resolveConfiguration()
	if !command.Flags().Changed(flagOutputNameConstant) {
		outputValue = configuration.Output
	}

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

	commitLines := repositoryManager.CommitLog(
		command.Context(),
		repositoryPath,
		gitrepo.ShortCommitLogFormat,
		gitrepo.LogQuery{Since: sinceValue, Until: untilValue},
	)
	records := history.ParseShortLines(commitLines, builder.Clock)
	if len(records) == 0 {
		fmt.Fprintln(command.OutOrStdout(), noCommitsMessageConstant)
		return nil
	}
	fmt.Fprintf(command.OutOrStdout(), commitCountMessageTemplateConstant, len(records))

	chatClient, degradedReason := builder.resolveChatClient(command, noAIValue, configuration.Model)
	generator := NewGenerator(chatClient, builder.Clock, logger)
	generationResult := generator.Generate(command.Context(), records, versionValue, degradedReason)

	if generationResult.Mode == GenerationModeFallback && len(generationResult.DegradedReason) > 0 {
		fmt.Fprintf(command.ErrOrStderr(), degradedMessageTemplateConstant, generationResult.DegradedReason)
	}

	if printOnlyValue {
		fmt.Fprintln(command.OutOrStdout(), generationResult.Content)
		return nil
	}

	if writeError := WriteEntry(outputValue, generationResult.Content); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, writeError)
	}
	fmt.Fprintf(command.OutOrStdout(), writtenMessageTemplateConstant, outputValue)
	return nil
}

// resolveChatClient builds the AI collaborator, returning a nil client and a
// degradation reason whenever the basic renderer must serve instead.
func (builder *CommandBuilder) resolveChatClient(command *cobra.Command, aiDisabled bool, model string) (llm.ChatClient, string) {
	if aiDisabled {
		return nil, ReasonAIDisabled
	}

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
