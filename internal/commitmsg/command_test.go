package commitmsg_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitt-tools/gitt/internal/commitmsg"
	"github.com/gitt-tools/gitt/internal/execshell"
	"github.com/gitt-tools/gitt/internal/gitrepo"
	"github.com/gitt-tools/gitt/internal/llm"
)

const (
	commandTestRepositoryPathConstant = "/repos/demo"
	commandTestRevParseKeyConstant    = "rev-parse --is-inside-work-tree"
	commandTestStatusKeyConstant      = "status --porcelain"
	commandTestStagedDiffKeyConstant  = "diff --cached"
	commandTestDiffStatKeyConstant    = "diff --stat --cached"
	commandTestRecentLogKeyConstant   = "log --oneline --max-count=5"
	commandTestStageKeyConstant       = "add ."
	commandTestStatusOutputConstant   = " M internal/app.go\n?? notes.txt\n"
	commandTestAPIKeyConstant         = "test-api-key"
)

type scriptedGitExecutor struct {
	responses map[string]string
	failures  map[string]int
	calls     []string
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	key := strings.Join(details.Arguments, " ")
	executor.calls = append(executor.calls, key)
	if exitCode, failed := executor.failures[key]; failed {
		return execshell.ExecutionResult{ExitCode: exitCode}, nil
	}
	return execshell.ExecutionResult{StandardOutput: executor.responses[key]}, nil
}

func dirtyRepositoryExecutor() *scriptedGitExecutor {
	return &scriptedGitExecutor{responses: map[string]string{
		commandTestRevParseKeyConstant:   "true\n",
		commandTestStatusKeyConstant:     commandTestStatusOutputConstant,
		commandTestStagedDiffKeyConstant: "diff --git a/internal/app.go b/internal/app.go\n",
		commandTestDiffStatKeyConstant:   " internal/app.go | 4 ++--\n",
		commandTestRecentLogKeyConstant:  "a1b2c3 [feat] add login\n",
	}}
}

func executeCommitCommand(testInstance *testing.T, builder *commitmsg.CommandBuilder, arguments []string) (string, string, error) {
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

func TestCommitCommandRequiresRepository(testInstance *testing.T) {
	builder := &commitmsg.CommandBuilder{
		GitExecutor:      &scriptedGitExecutor{failures: map[string]int{commandTestRevParseKeyConstant: 128}},
		WorkingDirectory: commandTestRepositoryPathConstant,
	}

	_, _, executionError := executeCommitCommand(testInstance, builder, []string{"--suggest"})

	require.ErrorIs(testInstance, executionError, gitrepo.ErrNotARepository)
}

func TestCommitCommandReportsCleanTree(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: map[string]string{commandTestRevParseKeyConstant: "true\n"}}
	builder := &commitmsg.CommandBuilder{
		GitExecutor:      executor,
		WorkingDirectory: commandTestRepositoryPathConstant,
	}

	standardOutput, _, executionError := executeCommitCommand(testInstance, builder, nil)

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, standardOutput, "Nothing to commit")
	require.NotContains(testInstance, executor.calls, commandTestStageKeyConstant)
}

func TestCommitCommandSuggestPrintsWithoutCommitting(testInstance *testing.T) {
	executor := dirtyRepositoryExecutor()
	chatClient := &fakeChatClient{response: suggesterTestAIResponseConstant}
	builder := &commitmsg.CommandBuilder{
		GitExecutor:      executor,
		WorkingDirectory: commandTestRepositoryPathConstant,
		APIKeyResolver:   func() string { return commandTestAPIKeyConstant },
		ClientFactory: func(_ context.Context, _ llm.Config) (llm.ChatClient, error) {
			return chatClient, nil
		},
	}

	standardOutput, _, executionError := executeCommitCommand(testInstance, builder, []string{"--suggest", "--type", "feat"})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, standardOutput, "[feat] "+suggesterTestAIResponseConstant)
	require.NotContains(testInstance, executor.calls, commandTestStageKeyConstant)
	require.Len(testInstance, chatClient.prompts, 1)
	require.Contains(testInstance, chatClient.prompts[0], "a1b2c3 [feat] add login")
}

func TestCommitCommandCommitsExplicitMessage(testInstance *testing.T) {
	executor := dirtyRepositoryExecutor()
	builder := &commitmsg.CommandBuilder{
		GitExecutor:      executor,
		WorkingDirectory: commandTestRepositoryPathConstant,
	}

	standardOutput, errorOutput, executionError := executeCommitCommand(testInstance, builder, []string{"--message", "stop crash", "--type", "fix"})

	require.NoError(testInstance, executionError)
	require.Empty(testInstance, errorOutput)
	require.Contains(testInstance, standardOutput, "Committed: [fix] stop crash")
	require.Contains(testInstance, executor.calls, commandTestStageKeyConstant)
	require.Contains(testInstance, executor.calls, "commit -m [fix] stop crash")
}

func TestCommitCommandFallsBackWithoutCredential(testInstance *testing.T) {
	executor := dirtyRepositoryExecutor()
	builder := &commitmsg.CommandBuilder{
		GitExecutor:      executor,
		WorkingDirectory: commandTestRepositoryPathConstant,
		APIKeyResolver:   func() string { return "" },
	}

	standardOutput, errorOutput, executionError := executeCommitCommand(testInstance, builder, []string{"--suggest"})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, errorOutput, commitmsg.ReasonMissingCredential)
	require.Contains(testInstance, standardOutput, "Update 2 files")
}
