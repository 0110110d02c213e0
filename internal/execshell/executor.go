package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandNameRequiredMessageConstant        = "command name must be provided"
	commandFailureTemplateConstant            = "%s command failed with exit code %d: %s"
	gitExecutableNameConstant                 = "git"
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandName identifies a supported executable.
type CommandName string

// CommandGit identifies the git binary.
const CommandGit CommandName = CommandName(gitExecutableNameConstant)

// CommandDetails describes a single invocation of an external tool.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outputs of a completed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands and reports their results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including its exit code and standard error.
func (failure CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	return fmt.Sprintf(commandFailureTemplateConstant, failure.Command.Name, failure.Result.ExitCode, trimmedStandardError)
}

// ShellExecutor runs shell commands with structured logging around each invocation.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	eventObserver CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor from the provided collaborators.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{logger: logger, commandRunner: commandRunner, eventObserver: noopCommandEventObserver{}}, nil
}

// SetEventObserver registers an observer notified about command lifecycle events.
func (executor *ShellExecutor) SetEventObserver(observer CommandEventObserver) {
	if observer == nil {
		executor.eventObserver = noopCommandEventObserver{}
		return
	}
	executor.eventObserver = observer
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the supplied command, logging lifecycle events and translating non-zero exits into errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(string(command.Name))) == 0 {
		return ExecutionResult{}, errors.New(commandNameRequiredMessageConstant)
	}

	loggableArguments := redactArguments(command.Details.Arguments)
	commandEvent := CommandEvent{
		Name:             command.Name,
		Arguments:        loggableArguments,
		WorkingDirectory: command.Details.WorkingDirectory,
	}

	startedAt := time.Now()
	executor.eventObserver.CommandStarted(commandEvent)
	executor.logger.Debug(
		commandMessageFormatter.BuildStartedMessage(command),
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, loggableArguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)

	executionResult, executionError := executor.commandRunner.Run(executionContext, command)
	if executionError != nil {
		executor.eventObserver.CommandExecutionFailed(commandEvent, executionError)
		executor.logger.Error(
			commandMessageFormatter.BuildExecutionFailureMessage(command, executionError),
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, loggableArguments),
		)
		return ExecutionResult{}, executionError
	}

	executor.eventObserver.CommandCompleted(commandEvent, executionResult, time.Since(startedAt))

	if executionResult.ExitCode != 0 {
		failure := CommandFailedError{Command: command, Result: executionResult}
		executor.logger.Debug(
			commandMessageFormatter.BuildFailureMessage(command, executionResult),
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
		)
		return executionResult, failure
	}

	executor.logger.Debug(
		commandMessageFormatter.BuildSuccessMessage(command),
		zap.String(logFieldCommandConstant, string(command.Name)),
	)

	return executionResult, nil
}

var commandMessageFormatter = CommandMessageFormatter{}

const (
	urlSchemeDelimiterConstant     = "://"
	urlCredentialDelimiterConstant = "@"
	redactedCredentialConstant     = "***"
)

// redactArguments masks embedded basic-auth credentials so tokens never reach log output.
func redactArguments(arguments []string) []string {
	redactedArguments := make([]string, len(arguments))
	for argumentIndex, argument := range arguments {
		redactedArguments[argumentIndex] = redactCredential(argument)
	}
	return redactedArguments
}

func redactCredential(argument string) string {
	schemeIndex := strings.Index(argument, urlSchemeDelimiterConstant)
	if schemeIndex == -1 {
		return argument
	}
	remainder := argument[schemeIndex+len(urlSchemeDelimiterConstant):]
	credentialIndex := strings.Index(remainder, urlCredentialDelimiterConstant)
	if credentialIndex == -1 {
		return argument
	}
	return argument[:schemeIndex+len(urlSchemeDelimiterConstant)] + redactedCredentialConstant + remainder[credentialIndex:]
}
