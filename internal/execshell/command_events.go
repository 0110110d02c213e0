package execshell

import "time"

// CommandEvent describes one git invocation with credential-safe arguments.
// Arguments are redacted before the event is emitted, so observers never see
// an authenticated push URL.
type CommandEvent struct {
	Name             CommandName
	Arguments        []string
	WorkingDirectory string
}

// CommandEventObserver receives lifecycle notifications for git command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(event CommandEvent)
	// CommandCompleted reports the result and wall-clock duration of a finished command.
	CommandCompleted(event CommandEvent, result ExecutionResult, duration time.Duration)
	// CommandExecutionFailed reports failures that prevented an execution result.
	CommandExecutionFailed(event CommandEvent, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(CommandEvent) {}

func (noopCommandEventObserver) CommandCompleted(CommandEvent, ExecutionResult, time.Duration) {}

func (noopCommandEventObserver) CommandExecutionFailed(CommandEvent, error) {}
