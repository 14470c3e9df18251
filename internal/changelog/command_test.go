package changelog_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitt-tools/gitt/internal/changelog"
	"github.com/gitt-tools/gitt/internal/execshell"
	"github.com/gitt-tools/gitt/internal/gitrepo"
	"github.com/gitt-tools/gitt/internal/llm"
)

const (
	commandTestRepositoryPathConstant = "/repos/demo"
	commandTestRevParseKeyConstant    = "rev-parse --is-inside-work-tree"
	commandTestLogKeyConstant         = "log --pretty=format:%h|%ad|%an|%s --date=short"
	commandTestCommitLinesConstant    = "a1b2c3|2024-01-01|Alice|[feat] add login\nd4e5f6|2024-01-02|Bob|[fix] stop crash\n"
	commandTestAPIKeyConstant         = "test-api-key"
)

type scriptedGitExecutor struct {
	responses map[string]string
	failures  map[string]int
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	key := strings.Join(details.Arguments, " ")
	if exitCode, failed := executor.failures[key]; failed {
		return execshell.ExecutionResult{ExitCode: exitCode}, nil
	}
	return execshell.ExecutionResult{StandardOutput: executor.responses[key]}, nil
}

func repositoryExecutor(commitLines string) *scriptedGitExecutor {
	return &scriptedGitExecutor{responses: map[string]string{
		commandTestRevParseKeyConstant: "true\n",
		commandTestLogKeyConstant:      commitLines,
	}}
}

func staticClientFactory(chatClient llm.ChatClient) llm.ClientFactory {
	return func(_ context.Context, _ llm.Config) (llm.ChatClient, error) {
		return chatClient, nil
	}
}

func executeChangelogCommand(testInstance *testing.T, builder *changelog.CommandBuilder, arguments []string) (string, string, error) {
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)
	command.SetArgs(arguments)

	executionError := command.ExecuteContext(context.Background())
	return outputBuffer.String(), errorBuffer.String(), executionError
}

func TestChangelogCommandRequiresRepository(testInstance *testing.T) {
	builder := &changelog.CommandBuilder{
		GitExecutor:      &scriptedGitExecutor{failures: map[string]int{commandTestRevParseKeyConstant: 128}},
		WorkingDirectory: commandTestRepositoryPathConstant,
		Clock:            rendererTestClock(),
	}

	_, _, executionError := executeChangelogCommand(testInstance, builder, []string{"--print-only"})

	require.ErrorIs(testInstance, executionError, gitrepo.ErrNotARepository)
}

func TestChangelogCommandReportsEmptyHistory(testInstance *testing.T) {
	builder := &changelog.CommandBuilder{
		GitExecutor:      repositoryExecutor(""),
		WorkingDirectory: commandTestRepositoryPathConstant,
		Clock:            rendererTestClock(),
	}

	standardOutput, _, executionError := executeChangelogCommand(testInstance, builder, []string{"--print-only"})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, standardOutput, "No commits found for the specified criteria")
}

func TestChangelogCommandPrintsAIEntry(testInstance *testing.T) {
	chatClient := &fakeChatClient{response: generatorTestAIResponseConstant}
	builder := &changelog.CommandBuilder{
		GitExecutor:      repositoryExecutor(commandTestCommitLinesConstant),
		WorkingDirectory: commandTestRepositoryPathConstant,
		Clock:            rendererTestClock(),
		APIKeyResolver:   func() string { return commandTestAPIKeyConstant },
		ClientFactory:    staticClientFactory(chatClient),
	}

	standardOutput, errorOutput, executionError := executeChangelogCommand(testInstance, builder, []string{"--print-only", "--version", "1.2.0"})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, standardOutput, "Found 2 commits")
	require.Contains(testInstance, standardOutput, generatorTestAIResponseConstant)
	require.Empty(testInstance, errorOutput)
	require.Len(testInstance, chatClient.prompts, 1)
	require.Contains(testInstance, chatClient.prompts[0], "stop crash")
}

func TestChangelogCommandWritesBasicEntryWithoutAI(testInstance *testing.T) {
	outputPath := filepath.Join(testInstance.TempDir(), "CHANGELOG.md")
	builder := &changelog.CommandBuilder{
		GitExecutor:      repositoryExecutor(commandTestCommitLinesConstant),
		WorkingDirectory: commandTestRepositoryPathConstant,
		Clock:            rendererTestClock(),
	}

	standardOutput, errorOutput, executionError := executeChangelogCommand(testInstance, builder, []string{"--no-ai", "--output", outputPath, "--version", "1.2.0"})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, standardOutput, "Changelog written to "+outputPath)
	require.Contains(testInstance, errorOutput, changelog.ReasonAIDisabled)

	written, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(written), "## [1.2.0] - 2024-06-01")
	require.Contains(testInstance, string(written), "### Features")
	require.Contains(testInstance, string(written), "- add login ([a1b2c3]) by Alice")
}

func TestChangelogCommandFallsBackWithoutCredential(testInstance *testing.T) {
	builder := &changelog.CommandBuilder{
		GitExecutor:      repositoryExecutor(commandTestCommitLinesConstant),
		WorkingDirectory: commandTestRepositoryPathConstant,
		Clock:            rendererTestClock(),
		APIKeyResolver:   func() string { return "" },
	}

	standardOutput, errorOutput, executionError := executeChangelogCommand(testInstance, builder, []string{"--print-only"})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, errorOutput, changelog.ReasonMissingCredential)
	require.Contains(testInstance, standardOutput, "## Unreleased - 2024-06-01")
}
