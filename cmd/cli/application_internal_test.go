package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitt-tools/gitt/internal/utils"
)

func isolateUserDirectories(testInstance *testing.T) {
	testInstance.Helper()
	temporaryHome := testInstance.TempDir()
	testInstance.Setenv("HOME", temporaryHome)
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(temporaryHome, ".config"))
}

func TestApplicationCommonDefaultsApplied(testInstance *testing.T) {
	isolateUserDirectories(testInstance)

	application := NewApplication()
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, string(utils.LogLevelInfo), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatStructured), application.configuration.Common.LogFormat)
	require.NotNil(testInstance, application.logger)
}

func TestApplicationPersistentFlagOverridesConfiguration(testInstance *testing.T) {
	isolateUserDirectories(testInstance)

	application := NewApplication()
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, string(utils.LogLevelDebug)))
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, string(utils.LogFormatConsole)))

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, string(utils.LogLevelDebug), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatConsole), application.configuration.Common.LogFormat)
	require.True(testInstance, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationRejectsInvalidLogLevel(testInstance *testing.T) {
	isolateUserDirectories(testInstance)

	application := NewApplication()
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))

	require.Error(testInstance, application.initializeConfiguration(application.rootCommand))
}

func TestInitializeConfigurationAttachesConfigurationFilePath(testInstance *testing.T) {
	isolateUserDirectories(testInstance)

	application := NewApplication()
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	_, pathAvailable := application.commandContextAccessor.ConfigurationFilePath(application.rootCommand.Context())
	require.True(testInstance, pathAvailable)
}
