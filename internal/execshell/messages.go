package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	gitCloneSubcommandNameConstant    = "clone"
	gitFetchSubcommandNameConstant    = "fetch"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitPullSubcommandNameConstant     = "pull"
	gitStatusSubcommandNameConstant   = "status"
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitPushSubcommandNameConstant     = "push"
	gitRevParseSubcommandNameConstant = "rev-parse"
)

const (
	gitCloneStartTemplateConstant             = "Cloning repository into %s"
	gitCloneSuccessTemplateConstant           = "Cloned repository into %s"
	gitCloneFailureTemplateConstant           = "Failed to clone repository into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant  = "Unable to clone repository into %s: %s"
	gitFetchStartTemplateConstant             = "Fetching updates in %s"
	gitFetchSuccessTemplateConstant           = "Fetched updates in %s"
	gitFetchFailureTemplateConstant           = "Failed to fetch updates in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant  = "Unable to fetch updates in %s: %s"
	gitCheckoutStartTemplateConstant          = "Switching branch in %s"
	gitCheckoutSuccessTemplateConstant        = "Switched branch in %s"
	gitCheckoutFailureTemplateConstant        = "Failed to switch branch in %s (exit code %d%s)"
	gitCheckoutExecutionFailureConstant       = "Unable to switch branch in %s: %s"
	gitPullStartTemplateConstant              = "Pulling latest changes in %s"
	gitPullSuccessTemplateConstant            = "Pulled latest changes in %s"
	gitPullFailureTemplateConstant            = "Failed to pull latest changes in %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant   = "Unable to pull latest changes in %s: %s"
	gitStatusStartTemplateConstant            = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant          = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant          = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureConstant         = "Unable to review working tree status in %s: %s"
	gitAddStartTemplateConstant               = "Staging changes in %s"
	gitAddSuccessTemplateConstant             = "Staged changes in %s"
	gitAddFailureTemplateConstant             = "Failed to stage changes in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant    = "Unable to stage changes in %s: %s"
	gitCommitStartTemplateConstant            = "Creating commit in %s"
	gitCommitSuccessTemplateConstant          = "Created commit in %s"
	gitCommitFailureTemplateConstant          = "Failed to create commit in %s (exit code %d%s)"
	gitCommitExecutionFailureConstant         = "Unable to create commit in %s: %s"
	gitPushStartTemplateConstant              = "Pushing changes from %s"
	gitPushSuccessTemplateConstant            = "Pushed changes from %s"
	gitPushFailureTemplateConstant            = "Failed to push changes from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant   = "Unable to push changes from %s: %s"
	gitRevParseStartTemplateConstant          = "Resolving revision in %s"
	gitRevParseSuccessTemplateConstant        = "Resolved revision in %s"
	gitRevParseFailureTemplateConstant        = "Failed to resolve revision in %s (exit code %d%s)"
	gitRevParseExecutionFailureConstant       = "Unable to resolve revision in %s: %s"
)

type gitMessageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var gitSubcommandMessageTemplates = map[string]gitMessageTemplates{
	gitCloneSubcommandNameConstant:    {gitCloneStartTemplateConstant, gitCloneSuccessTemplateConstant, gitCloneFailureTemplateConstant, gitCloneExecutionFailureTemplateConstant},
	gitFetchSubcommandNameConstant:    {gitFetchStartTemplateConstant, gitFetchSuccessTemplateConstant, gitFetchFailureTemplateConstant, gitFetchExecutionFailureTemplateConstant},
	gitCheckoutSubcommandNameConstant: {gitCheckoutStartTemplateConstant, gitCheckoutSuccessTemplateConstant, gitCheckoutFailureTemplateConstant, gitCheckoutExecutionFailureConstant},
	gitPullSubcommandNameConstant:     {gitPullStartTemplateConstant, gitPullSuccessTemplateConstant, gitPullFailureTemplateConstant, gitPullExecutionFailureTemplateConstant},
	gitStatusSubcommandNameConstant:   {gitStatusStartTemplateConstant, gitStatusSuccessTemplateConstant, gitStatusFailureTemplateConstant, gitStatusExecutionFailureConstant},
	gitAddSubcommandNameConstant:      {gitAddStartTemplateConstant, gitAddSuccessTemplateConstant, gitAddFailureTemplateConstant, gitAddExecutionFailureTemplateConstant},
	gitCommitSubcommandNameConstant:   {gitCommitStartTemplateConstant, gitCommitSuccessTemplateConstant, gitCommitFailureTemplateConstant, gitCommitExecutionFailureConstant},
	gitPushSubcommandNameConstant:     {gitPushStartTemplateConstant, gitPushSuccessTemplateConstant, gitPushFailureTemplateConstant, gitPushExecutionFailureTemplateConstant},
	gitRevParseSubcommandNameConstant: {gitRevParseStartTemplateConstant, gitRevParseSuccessTemplateConstant, gitRevParseFailureTemplateConstant, gitRevParseExecutionFailureConstant},
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGit {
		if gitMessage, handled := formatter.describeGitMessage(command, result, failure, stage); handled {
			return gitMessage
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) (string, bool) {
	subcommandName := firstArgument(command.Details.Arguments)
	templates, templatesExist := gitSubcommandMessageTemplates[subcommandName]
	if !templatesExist {
		return emptyStringConstant, false
	}

	workingDirectoryLabel := describeWorkingDirectory(command.Details.WorkingDirectory)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, workingDirectoryLabel), true
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, workingDirectoryLabel), true
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, workingDirectoryLabel, result.ExitCode, describeStandardError(result.StandardError)), true
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, workingDirectoryLabel, describeFailure(failure)), true
	default:
		return emptyStringConstant, false
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := fmt.Sprintf(commandLabelTemplateConstant, command.Name, describeArguments(command.Details.Arguments))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, describeStandardError(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, describeFailure(failure))
	}
}

func firstArgument(arguments []string) string {
	if len(arguments) == 0 {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[0])
}

func describeArguments(arguments []string) string {
	if len(arguments) == 0 {
		return emptyStringConstant
	}
	return commandArgumentsJoinSeparatorConstant + strings.Join(arguments, commandArgumentsJoinSeparatorConstant)
}

func describeWorkingDirectory(workingDirectory string) string {
	trimmedWorkingDirectory := strings.TrimSpace(workingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func describeStandardError(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
