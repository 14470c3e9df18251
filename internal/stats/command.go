package stats

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitt-tools/gitt/internal/dependencies"
	"github.com/gitt-tools/gitt/internal/execshell"
	"github.com/gitt-tools/gitt/internal/gitrepo"
)

const (
	commandNameConstant             = "stats"
	commandShortDescriptionConstant = "Summarize per-author and per-file repository activity"
	commandLongDescriptionConstant  = "stats aggregates commit counts, line deltas, and file change frequency from git history and renders Markdown tables."

	flagSinceNameConstant  = "since"
	flagSinceUsageConstant = "Include commits since this date (for example \"2024-01-01\" or \"1 week ago\")"
	flagUntilNameConstant  = "until"
	flagUntilUsageConstant = "Include commits until this date"
	flagLimitNameConstant  = "limit"
	flagLimitUsageConstant = "Maximum number of file activity rows"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the stats cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           gitrepo.GitExecutor
	CommandEventsObserver execshell.CommandEventObserver
	WorkingDirectory      string
	ConfigurationProvider func() CommandConfiguration
	FileSizer             FileSizer
}

// Build constructs the cobra command for the statistics workflow.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagSinceNameConstant, "", flagSinceUsageConstant)
	command.Flags().String(flagUntilNameConstant, "", flagUntilUsageConstant)
	command.Flags().Int(flagLimitNameConstant, TopFileLimit, flagLimitUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	sinceValue, _ := command.Flags().GetString(flagSinceNameConstant)
	untilValue, _ := command.Flags().GetString(flagUntilNameConstant)
	limitValue, _ := command.Flags().GetInt(flagLimitNameConstant)

	configuration := builder.resolveConfiguration()
	if !command.Flags().Changed(flagLimitNameConstant) {
		limitValue = configuration.Limit
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

	service, serviceError := NewService(repositoryManager, builder.FileSizer, nil)
	if serviceError != nil {
		return serviceError
	}

	report := service.BuildReport(command.Context(), repositoryPath, gitrepo.LogQuery{Since: sinceValue, Until: untilValue}, limitValue)
	fmt.Fprint(command.OutOrStdout(), RenderMarkdown(report, limitValue))
	return nil
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
