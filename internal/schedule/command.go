package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reviewtools/sentiflow/internal/gitrepo"
	"github.com/reviewtools/sentiflow/internal/pipeline"
	"github.com/reviewtools/sentiflow/internal/secrets"
)

const (
	scheduleCommandUseConstant              = "schedule"
	scheduleCommandShortDescription         = "Run the pipeline on a cron schedule"
	scheduleCommandLongDescription          = "schedule keeps the process alive and runs the sentiment pipeline whenever the cron expression fires."
	unexpectedArgumentsErrorMessageConstant = "schedule does not accept positional arguments"
	scheduleExecutionErrorTemplateConstant  = "schedule failed: %w"
	cronFlagNameConstant                    = "cron"
	cronFlagDescriptionConstant             = "Cron expression controlling when runs fire"
	verifyAccessFlagNameConstant            = "verify-access"
	verifyAccessFlagDescriptionConstant     = "Check push permission through the GitHub API before every scheduled run"
)

// CommandBuilder assembles the schedule command.
type CommandBuilder struct {
	LoggerProvider        pipeline.LoggerProvider
	ConfigurationProvider pipeline.ConfigurationProvider
	RunnerResolver        pipeline.RunnerResolver
	EnvironmentVariables  map[string]string
	Output                io.Writer
}

// Build constructs the schedule command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	scheduleCommand := &cobra.Command{
		Use:   scheduleCommandUseConstant,
		Short: scheduleCommandShortDescription,
		Long:  scheduleCommandLongDescription,
		RunE:  builder.runSchedule,
	}

	scheduleCommand.Flags().String(cronFlagNameConstant, "", cronFlagDescriptionConstant)
	scheduleCommand.Flags().Bool(verifyAccessFlagNameConstant, false, verifyAccessFlagDescriptionConstant)

	return scheduleCommand, nil
}

func (builder *CommandBuilder) runSchedule(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	configuration := builder.resolveConfiguration()

	cronFlagValue, cronFlagError := command.Flags().GetString(cronFlagNameConstant)
	if cronFlagError != nil {
		return cronFlagError
	}
	cronExpression := configuration.Schedule
	if trimmedCronValue := strings.TrimSpace(cronFlagValue); len(trimmedCronValue) > 0 {
		cronExpression = trimmedCronValue
	}

	verifyAccessValue, verifyAccessError := command.Flags().GetBool(verifyAccessFlagNameConstant)
	if verifyAccessError != nil {
		return verifyAccessError
	}

	credentials, credentialsError := secrets.ResolveCredentials(builder.EnvironmentVariables)
	if credentialsError != nil {
		return credentialsError
	}

	logger := builder.resolveLogger()
	runExecutor, resolveError := builder.resolveRunner(command, logger, configuration, credentials)
	if resolveError != nil {
		return resolveError
	}

	runOptions := buildRunOptions(configuration, credentials, verifyAccessValue)

	scheduler, schedulerError := NewScheduler(
		Dependencies{
			Run: func(runContext context.Context) error {
				_, executionError := runExecutor.Execute(runContext, runOptions)
				return executionError
			},
			Logger: logger,
		},
		Options{CronExpression: cronExpression},
	)
	if schedulerError != nil {
		return schedulerError
	}

	if startError := scheduler.Start(command.Context()); startError != nil {
		return fmt.Errorf(scheduleExecutionErrorTemplateConstant, startError)
	}

	return nil
}

func buildRunOptions(configuration pipeline.CommandConfiguration, credentials secrets.Credentials, verifyRemoteAccess bool) pipeline.Options {
	return pipeline.Options{
		RemoteURL:          configuration.RemoteURL,
		RepositoryPath:     configuration.RepositoryPath,
		BranchName:         configuration.Branch,
		WorkbookPath:       configuration.WorkbookPath,
		CommitMessage:      configuration.CommitMessage,
		CommitIdentity:     gitrepo.CommitIdentity{Name: configuration.AuthorName, Email: configuration.AuthorEmail},
		PushToken:          credentials.PushToken,
		VerifyRemoteAccess: verifyRemoteAccess,
	}
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

func (builder *CommandBuilder) resolveRunner(command *cobra.Command, logger *zap.Logger, configuration pipeline.CommandConfiguration, credentials secrets.Credentials) (pipeline.RunExecutor, error) {
	if builder.RunnerResolver != nil {
		return builder.RunnerResolver.Resolve(command.Context(), logger, configuration, credentials)
	}

	defaultResolver := &pipeline.DefaultRunnerResolver{Output: builder.Output}

	return defaultResolver.Resolve(command.Context(), logger, configuration, credentials)
}
