package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/gitt-tools/gitt/internal/changelog"
	"github.com/gitt-tools/gitt/internal/commitmsg"
	"github.com/gitt-tools/gitt/internal/credentials"
	"github.com/gitt-tools/gitt/internal/dashboard"
	"github.com/gitt-tools/gitt/internal/execshell"
	"github.com/gitt-tools/gitt/internal/stats"
	"github.com/gitt-tools/gitt/internal/ui"
	"github.com/gitt-tools/gitt/internal/utils"
	flagutils "github.com/gitt-tools/gitt/internal/utils/flags"
	pathutils "github.com/gitt-tools/gitt/internal/utils/path"
)

const (
	applicationNameConstant             = "gitt"
	applicationShortDescriptionConstant = "Git commit assistant and changelog generator"
	applicationLongDescriptionConstant  = "gitt wraps git with AI-assisted commit drafting, changelog assembly, repository statistics, and a browser dashboard."

	configFileFlagNameConstant       = "config"
	configFileFlagUsageConstant      = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant         = "log-level"
	logLevelFlagDescriptionConstant  = "Override the configured log level."
	logFormatFlagNameConstant        = "log-format"
	logFormatFlagDescriptionConstant = "Override the configured log format."
	directoryFlagNameConstant        = "directory"
	directoryFlagShorthandConstant   = "C"
	directoryFlagUsageConstant       = "Repository directory to operate on (defaults to the working directory)."
	versionFlagNameConstant          = "version"
	versionFlagUsageConstant         = "Print the gitt version and exit."

	commonConfigurationKeyConstant    = "common"
	commonLogLevelConfigKeyConstant   = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant  = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant     = "tools"
	changelogConfigurationKeyConstant = toolsConfigurationKeyConstant + ".changelog"
	commitConfigurationKeyConstant    = toolsConfigurationKeyConstant + ".commit"
	statsConfigurationKeyConstant     = toolsConfigurationKeyConstant + ".stats"
	serveConfigurationKeyConstant     = toolsConfigurationKeyConstant + ".serve"

	environmentPrefixConstant              = "GITT"
	configurationNameConstant              = "config"
	configurationTypeConstant              = "yaml"
	defaultConfigurationSearchPathConstant = "."

	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	rootCommandInfoMessageConstant          = "gitt CLI executed"
	rootCommandDebugMessageConstant         = "gitt CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"

	versionOutputTemplateConstant = "gitt version: %s\n"
	developmentVersionConstant    = "development"
	versionFlagTokenConstant      = "--version"
)

var (
	logLevelChoices  = []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}
	logFormatChoices = []string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)}
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Changelog changelog.CommandConfiguration `mapstructure:"changelog"`
	Commit    commitmsg.CommandConfiguration `mapstructure:"commit"`
	Stats     stats.CommandConfiguration     `mapstructure:"stats"`
	Serve     dashboard.CommandConfiguration `mapstructure:"serve"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	directoryFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	homeExpander           *pathutils.HomeExpander
	versionResolver        func(context.Context) string
	exitFunction           func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		homeExpander:           pathutils.NewHomeExpander(),
		versionResolver:        resolveBuildVersion,
		exitFunction:           os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogLevelInfo), logLevelChoices, logLevelFlagDescriptionConstant),
	)
	cobraCommand.PersistentFlags().StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), logFormatChoices, logFormatFlagDescriptionConstant),
	)
	cobraCommand.PersistentFlags().StringVarP(&application.directoryFlagValue, directoryFlagNameConstant, directoryFlagShorthandConstant, "", directoryFlagUsageConstant)
	cobraCommand.PersistentFlags().Bool(versionFlagNameConstant, false, versionFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	changelogBuilder := changelog.CommandBuilder{
		LoggerProvider:        loggerProvider,
		CommandEventsObserver: application.commandEventsObserver(),
		ConfigurationProvider: func() changelog.CommandConfiguration {
			return application.configuration.Tools.Changelog
		},
	}
	changelogCommand, changelogBuildError := changelogBuilder.Build()
	if changelogBuildError == nil {
		application.decorateWorkingDirectory(&changelogBuilder.WorkingDirectory, changelogCommand)
		cobraCommand.AddCommand(changelogCommand)
	}

	commitBuilder := commitmsg.CommandBuilder{
		LoggerProvider:        loggerProvider,
		CommandEventsObserver: application.commandEventsObserver(),
		ConfigurationProvider: func() commitmsg.CommandConfiguration {
			return application.configuration.Tools.Commit
		},
	}
	commitCommand, commitBuildError := commitBuilder.Build()
	if commitBuildError == nil {
		application.decorateWorkingDirectory(&commitBuilder.WorkingDirectory, commitCommand)
		cobraCommand.AddCommand(commitCommand)
	}

	statsBuilder := stats.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() stats.CommandConfiguration {
			return application.configuration.Tools.Stats
		},
	}
	statsCommand, statsBuildError := statsBuilder.Build()
	if statsBuildError == nil {
		application.decorateWorkingDirectory(&statsBuilder.WorkingDirectory, statsCommand)
		cobraCommand.AddCommand(statsCommand)
	}

	serveBuilder := dashboard.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() dashboard.CommandConfiguration {
			return application.configuration.Tools.Serve
		},
	}
	serveCommand, serveBuildError := serveBuilder.Build()
	if serveBuildError == nil {
		application.decorateWorkingDirectory(&serveBuilder.WorkingDirectory, serveCommand)
		cobraCommand.AddCommand(serveCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// RootCommand exposes the assembled Cobra root command.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	if application.handleVersionRequest() {
		return nil
	}

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// handleVersionRequest answers a bare `gitt --version` invocation. Subcommands
// own their flag sets, so the scan stops at the first subcommand name; a
// `--version` token after that point belongs to the subcommand.
func (application *Application) handleVersionRequest() bool {
	subcommandNames := make(map[string]struct{})
	for _, childCommand := range application.rootCommand.Commands() {
		subcommandNames[childCommand.Name()] = struct{}{}
	}

	for _, argument := range os.Args[1:] {
		if _, namesSubcommand := subcommandNames[argument]; namesSubcommand {
			return false
		}
		if argument == versionFlagTokenConstant {
			fmt.Fprintf(os.Stdout, versionOutputTemplateConstant, application.versionResolver(application.rootCommand.Context()))
			application.exitFunction(0)
			return true
		}
	}
	return false
}

func resolveBuildVersion(context.Context) string {
	buildInformation, buildInformationAvailable := debug.ReadBuildInfo()
	if !buildInformationAvailable || len(buildInformation.Main.Version) == 0 {
		return developmentVersionConstant
	}
	return buildInformation.Main.Version
}

// decorateWorkingDirectory resolves the persistent --directory flag, expanding
// a leading tilde, before the subcommand runs.
func (application *Application) decorateWorkingDirectory(target *string, command *cobra.Command) {
	existingPreRun := command.PreRunE
	command.PreRunE = func(innerCommand *cobra.Command, arguments []string) error {
		if len(application.directoryFlagValue) > 0 {
			*target = application.homeExpander.Expand(application.directoryFlagValue)
		}
		if existingPreRun != nil {
			return existingPreRun(innerCommand, arguments)
		}
		return nil
	}
}

func (application *Application) commandEventsObserver() execshell.CommandEventObserver {
	consoleObserver := ui.NewConsoleCommandObserver(utils.NewFlushingWriter(os.Stdout), false)
	return ui.NewGatedCommandObserver(application.humanReadableLoggingEnabled, consoleObserver)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range changelog.DefaultConfigurationValues(changelogConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range commitmsg.DefaultConfigurationValues(commitConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range stats.DefaultConfigurationValues(statsConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range dashboard.DefaultConfigurationValues(serveConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
		application.resolveLogFilePath(),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// resolveLogFilePath locates the persistent log file beside the credential
// store, creating its directory so the zap file sink can open it.
func (application *Application) resolveLogFilePath() string {
	credentialStore, storeError := credentials.NewDefaultStore()
	if storeError != nil {
		return ""
	}
	logFilePath := credentialStore.LogFilePath()
	if mkdirError := os.MkdirAll(filepath.Dir(logFilePath), 0o700); mkdirError != nil {
		return ""
	}
	return logFilePath
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	return application.syncLoggerInstance(application.logger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
