package preflight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reviewtools/sentiflow/internal/githubrepo"
	"github.com/reviewtools/sentiflow/internal/pipeline"
	"github.com/reviewtools/sentiflow/internal/schedule"
)

const (
	verifyCommandUseConstant                = "verify"
	verifyCommandShortDescriptionConstant   = "Check credentials and configuration without running the pipeline"
	verifyCommandLongDescriptionConstant    = "verify resolves secrets, parses the remote URL, checks push access, and validates the cron schedule."
	unexpectedArgumentsErrorMessageConstant = "verify does not accept positional arguments"
	verificationFailedMessageConstant       = "verification failed"
	passedResultMarkerConstant              = "ok"
	failedResultMarkerConstant              = "FAIL"
	resultLineTemplateConstant              = "%-4s %-14s %s\n"
)

// ErrVerificationFailed indicates at least one preflight check did not pass.
var ErrVerificationFailed = errors.New(verificationFailedMessageConstant)

// CommandBuilder assembles the verify command.
type CommandBuilder struct {
	LoggerProvider        pipeline.LoggerProvider
	ConfigurationProvider pipeline.ConfigurationProvider
	EnvironmentVariables  map[string]string
	VerifierFactory       VerifierFactory
	ScheduleValidator     ScheduleValidator
}

// Build constructs the verify command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	verifyCommand := &cobra.Command{
		Use:   verifyCommandUseConstant,
		Short: verifyCommandShortDescriptionConstant,
		Long:  verifyCommandLongDescriptionConstant,
		RunE:  builder.runVerify,
	}

	return verifyCommand, nil
}

func (builder *CommandBuilder) runVerify(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	checker := NewChecker(Dependencies{
		Logger:               builder.resolveLogger(),
		EnvironmentVariables: builder.EnvironmentVariables,
		VerifierFactory:      builder.resolveVerifierFactory(),
		ScheduleValidator:    builder.resolveScheduleValidator(),
	})

	report := checker.Run(command.Context(), builder.resolveConfiguration())

	for _, result := range report.Results {
		resultMarker := passedResultMarkerConstant
		if !result.Passed {
			resultMarker = failedResultMarkerConstant
		}
		fmt.Fprintf(command.OutOrStdout(), resultLineTemplateConstant, resultMarker, result.Name, result.Detail)
	}

	if !report.Passed() {
		return ErrVerificationFailed
	}

	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() pipeline.CommandConfiguration {
	configuration := pipeline.DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveVerifierFactory() VerifierFactory {
	if builder.VerifierFactory != nil {
		return builder.VerifierFactory
	}

	return func(executionContext context.Context, token string) (AccessVerifier, error) {
		return githubrepo.NewClient(executionContext, token)
	}
}

func (builder *CommandBuilder) resolveScheduleValidator() ScheduleValidator {
	if builder.ScheduleValidator != nil {
		return builder.ScheduleValidator
	}

	return func(cronExpression string) (string, error) {
		scheduler, schedulerError := schedule.NewScheduler(
			schedule.Dependencies{Run: func(context.Context) error { return nil }},
			schedule.Options{CronExpression: cronExpression},
		)
		if schedulerError != nil {
			return "", schedulerError
		}
		return scheduler.NextRun(time.Now()).Format(time.RFC3339), nil
	}
}
