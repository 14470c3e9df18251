package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/gitt-tools/gitt/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "Running %s"
	commandCompletedMessageTemplateConstant        = "Completed %s"
	commandFailedExitCodeMessageTemplateConstant   = "%s failed with exit code %d"
	commandExecutionFailureMessageTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant         = " (in %s)"
	commandArgumentsJoinSeparatorConstant          = " "
	standardErrorSuffixTemplateConstant            = ": %s"
	unknownFailureMessageConstant                  = "unknown error"
	messageLineTemplateConstant                    = "%s\n"
)

// CommandEventFormatter builds human-readable messages for command lifecycle events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandCompletedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	baseMessage := fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode)
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) == 0 {
		return baseMessage
	}
	return baseMessage + fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), failureMessage)
}

func (formatter CommandEventFormatter) formatCommandLabel(command execshell.ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	if len(command.Details.WorkingDirectory) > 0 {
		commandLabel += fmt.Sprintf(workingDirectorySuffixTemplateConstant, command.Details.WorkingDirectory)
	}
	return commandLabel
}

// ConsoleCommandObserver writes formatted command lifecycle events to an output stream.
type ConsoleCommandObserver struct {
	formatter    CommandEventFormatter
	output       io.Writer
	includeStart bool
}

// NewConsoleCommandObserver constructs an observer writing to the provided stream.
func NewConsoleCommandObserver(output io.Writer, includeStart bool) *ConsoleCommandObserver {
	return &ConsoleCommandObserver{output: output, includeStart: includeStart}
}

// CommandStarted reports a command about to run when start events are enabled.
func (observer *ConsoleCommandObserver) CommandStarted(command execshell.ShellCommand) {
	if !observer.includeStart || observer.output == nil {
		return
	}
	fmt.Fprintf(observer.output, messageLineTemplateConstant, observer.formatter.BuildStartedMessage(command))
}

// CommandCompleted reports a finished command, including failures surfaced by exit codes.
func (observer *ConsoleCommandObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if observer.output == nil {
		return
	}
	if result.Succeeded() {
		if observer.includeStart {
			fmt.Fprintf(observer.output, messageLineTemplateConstant, observer.formatter.BuildSuccessMessage(command))
		}
		return
	}
	fmt.Fprintf(observer.output, messageLineTemplateConstant, observer.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed reports commands that could not be launched.
func (observer *ConsoleCommandObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if observer.output == nil {
		return
	}
	fmt.Fprintf(observer.output, messageLineTemplateConstant, observer.formatter.BuildExecutionFailureMessage(command, failure))
}

// GatedCommandObserver forwards lifecycle events to a delegate only while the
// predicate reports true, letting callers defer the console/quiet decision
// until configuration is loaded.
type GatedCommandObserver struct {
	enabled  func() bool
	delegate execshell.CommandEventObserver
}

// NewGatedCommandObserver wraps the delegate behind the enabled predicate.
func NewGatedCommandObserver(enabled func() bool, delegate execshell.CommandEventObserver) *GatedCommandObserver {
	return &GatedCommandObserver{enabled: enabled, delegate: delegate}
}

func (observer *GatedCommandObserver) forwardingEnabled() bool {
	return observer.enabled != nil && observer.delegate != nil && observer.enabled()
}

// CommandStarted forwards start events while enabled.
func (observer *GatedCommandObserver) CommandStarted(command execshell.ShellCommand) {
	if observer.forwardingEnabled() {
		observer.delegate.CommandStarted(command)
	}
}

// CommandCompleted forwards completion events while enabled.
func (observer *GatedCommandObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if observer.forwardingEnabled() {
		observer.delegate.CommandCompleted(command, result)
	}
}

// CommandExecutionFailed forwards launch failures while enabled.
func (observer *GatedCommandObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if observer.forwardingEnabled() {
		observer.delegate.CommandExecutionFailed(command, failure)
	}
}
