package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewtools/sentiflow/internal/execshell"
)

const (
	testRepositoryDirectoryConstant = "/workspace/reviews"
	testCommitSubcommandConstant    = "commit"
	testPushSubcommandConstant      = "push"
	testUnknownSubcommandConstant   = "stash"
)

func TestCommandMessageFormatterDescribesKnownGitSubcommands(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	commitCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{testCommitSubcommandConstant},
			WorkingDirectory: testRepositoryDirectoryConstant,
		},
	}

	startedMessage := formatter.BuildStartedMessage(commitCommand)
	require.Contains(testInstance, startedMessage, testRepositoryDirectoryConstant)

	failureMessage := formatter.BuildFailureMessage(commitCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: "nothing to commit"})
	require.Contains(testInstance, failureMessage, "exit code 1")
	require.Contains(testInstance, failureMessage, "nothing to commit")
}

func TestCommandMessageFormatterFallsBackToGenericMessages(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	unknownCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{testUnknownSubcommandConstant}},
	}

	successMessage := formatter.BuildSuccessMessage(unknownCommand)
	require.Contains(testInstance, successMessage, string(execshell.CommandGit))
	require.Contains(testInstance, successMessage, testUnknownSubcommandConstant)
}

func TestCommandMessageFormatterDescribesPushWithoutWorkingDirectory(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	pushCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{testPushSubcommandConstant}},
	}

	startedMessage := formatter.BuildStartedMessage(pushCommand)
	require.Contains(testInstance, startedMessage, "current directory")
}
