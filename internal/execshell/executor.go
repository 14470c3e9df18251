package execshell

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	gitToolNameConstant                  = "git"
	loggerRequiredMessageConstant        = "logger must not be nil"
	commandRunnerRequiredMessageConstant = "command runner must not be nil"
	commandStartedLogMessageConstant     = "shell command started"
	commandCompletedLogMessageConstant   = "shell command completed"
	commandFailedLogMessageConstant      = "shell command failed"
	logFieldToolNameConstant             = "tool_name"
	logFieldArgumentsConstant            = "arguments"
	logFieldWorkingDirectoryConstant     = "working_directory"
	logFieldExitCodeConstant             = "exit_code"
	logFieldStandardErrorConstant        = "standard_error"
	argumentsJoinSeparatorConstant       = " "
)

// ShellCommandName identifies a supported executable.
type ShellCommandName string

// Supported executables.
const (
	CommandGit ShellCommandName = ShellCommandName(gitToolNameConstant)
)

// CommandDetails describes a single tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a ShellCommandName with invocation details.
type ShellCommand struct {
	Name    ShellCommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// Succeeded reports whether the command exited with a zero status.
func (result ExecutionResult) Succeeded() bool {
	return result.ExitCode == 0
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor coordinates command construction, execution, logging, and event observation.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor with the supplied collaborators.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, errors.New(loggerRequiredMessageConstant)
	}
	if commandRunner == nil {
		return nil, errors.New(commandRunnerRequiredMessageConstant)
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}

	return &ShellExecutor{logger: logger, runner: commandRunner, observer: observer}, nil
}

// ExecuteGit runs git with the provided details.
//
// Runner failures (missing binary, launch errors) surface as errors; a
// non-zero exit status is returned inside the ExecutionResult so callers can
// treat it as "no data" rather than a propagated failure.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	command := ShellCommand{Name: CommandGit, Details: details}
	return executor.execute(executionContext, command)
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldToolNameConstant, string(command.Name)),
		zap.String(logFieldArgumentsConstant, strings.Join(command.Details.Arguments, argumentsJoinSeparatorConstant)),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	executor.observer.CommandStarted(command)

	executionResult, executionError := executor.runner.Run(executionContext, command)
	if executionError != nil {
		executor.logger.Debug(
			commandFailedLogMessageConstant,
			zap.String(logFieldToolNameConstant, string(command.Name)),
			zap.Error(executionError),
		)
		executor.observer.CommandExecutionFailed(command, executionError)
		return ExecutionResult{}, executionError
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(logFieldToolNameConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		zap.String(logFieldStandardErrorConstant, executionResult.StandardError),
	)
	executor.observer.CommandCompleted(command, executionResult)

	return executionResult, nil
}
