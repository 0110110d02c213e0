package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reviewtools/sentiflow/internal/execshell"
	"github.com/reviewtools/sentiflow/internal/githubrepo"
	"github.com/reviewtools/sentiflow/internal/gitrepo"
	"github.com/reviewtools/sentiflow/internal/secrets"
	"github.com/reviewtools/sentiflow/internal/sentiment"
)

const (
	runCommandUseConstant                   = "run"
	runCommandShortDescriptionConstant      = "Run the sentiment analysis pipeline once"
	runCommandLongDescriptionConstant       = "run clones the reviews repository, classifies pending reviews, and pushes the updated workbook."
	unexpectedArgumentsErrorMessageConstant = "run does not accept positional arguments"
	runExecutionErrorTemplateConstant       = "run failed: %w"
	remoteFlagNameConstant                  = "remote"
	remoteFlagDescriptionConstant           = "HTTPS or SSH URL of the reviews repository"
	repositoryPathFlagNameConstant          = "path"
	repositoryPathFlagDescriptionConstant   = "Local directory for the repository clone"
	branchFlagNameConstant                  = "branch"
	branchFlagDescriptionConstant           = "Branch to check out and push"
	workbookFlagNameConstant                = "workbook"
	workbookFlagDescriptionConstant         = "Workbook path relative to the repository root"
	modelFlagNameConstant                   = "model"
	modelFlagDescriptionConstant            = "Gemini model used for classification"
	commitMessageFlagNameConstant           = "message"
	commitMessageFlagDescriptionConstant    = "Commit message for workbook updates"
	verifyAccessFlagNameConstant            = "verify-access"
	verifyAccessFlagDescriptionConstant     = "Check push permission through the GitHub API before cloning"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current pipeline configuration.
type ConfigurationProvider func() CommandConfiguration

// RunExecutor executes a configured pipeline run.
type RunExecutor interface {
	Execute(executionContext context.Context, options Options) (*State, error)
}

// RunnerResolver creates run executors for the command.
type RunnerResolver interface {
	Resolve(executionContext context.Context, logger *zap.Logger, configuration CommandConfiguration, credentials secrets.Credentials) (RunExecutor, error)
}

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	RunnerResolver        RunnerResolver
	EnvironmentVariables  map[string]string
	Output                io.Writer
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	runCommand := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		RunE:  builder.runPipeline,
	}

	runCommand.Flags().String(remoteFlagNameConstant, "", remoteFlagDescriptionConstant)
	runCommand.Flags().String(repositoryPathFlagNameConstant, "", repositoryPathFlagDescriptionConstant)
	runCommand.Flags().String(branchFlagNameConstant, "", branchFlagDescriptionConstant)
	runCommand.Flags().String(workbookFlagNameConstant, "", workbookFlagDescriptionConstant)
	runCommand.Flags().String(modelFlagNameConstant, "", modelFlagDescriptionConstant)
	runCommand.Flags().String(commitMessageFlagNameConstant, "", commitMessageFlagDescriptionConstant)
	runCommand.Flags().Bool(verifyAccessFlagNameConstant, false, verifyAccessFlagDescriptionConstant)

	return runCommand, nil
}

func (builder *CommandBuilder) runPipeline(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	credentials, credentialsError := secrets.ResolveCredentials(builder.EnvironmentVariables)
	if credentialsError != nil {
		return credentialsError
	}

	logger := builder.resolveLogger()
	runExecutor, resolveError := builder.resolveRunner(command.Context(), logger, configuration, credentials)
	if resolveError != nil {
		return resolveError
	}

	verifyAccessValue, verifyAccessError := command.Flags().GetBool(verifyAccessFlagNameConstant)
	if verifyAccessError != nil {
		return verifyAccessError
	}

	runOptions := Options{
		RemoteURL:          configuration.RemoteURL,
		RepositoryPath:     configuration.RepositoryPath,
		BranchName:         configuration.Branch,
		WorkbookPath:       configuration.WorkbookPath,
		CommitMessage:      configuration.CommitMessage,
		CommitIdentity:     gitrepo.CommitIdentity{Name: configuration.AuthorName, Email: configuration.AuthorEmail},
		PushToken:          credentials.PushToken,
		VerifyRemoteAccess: verifyAccessValue,
	}

	if _, executionError := runExecutor.Execute(command.Context(), runOptions); executionError != nil {
		return fmt.Errorf(runExecutionErrorTemplateConstant, executionError)
	}

	return nil
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := builder.resolveConfiguration()

	stringFlagTargets := []struct {
		flagName string
		target   *string
	}{
		{remoteFlagNameConstant, &configuration.RemoteURL},
		{repositoryPathFlagNameConstant, &configuration.RepositoryPath},
		{branchFlagNameConstant, &configuration.Branch},
		{workbookFlagNameConstant, &configuration.WorkbookPath},
		{modelFlagNameConstant, &configuration.Model},
		{commitMessageFlagNameConstant, &configuration.CommitMessage},
	}

	for _, flagTarget := range stringFlagTargets {
		flagValue, flagError := command.Flags().GetString(flagTarget.flagName)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		if trimmedFlagValue := strings.TrimSpace(flagValue); len(trimmedFlagValue) > 0 {
			*flagTarget.target = trimmedFlagValue
		}
	}

	return configuration, nil
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

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveRunner(executionContext context.Context, logger *zap.Logger, configuration CommandConfiguration, credentials secrets.Credentials) (RunExecutor, error) {
	if builder.RunnerResolver != nil {
		return builder.RunnerResolver.Resolve(executionContext, logger, configuration, credentials)
	}

	defaultResolver := &DefaultRunnerResolver{Output: builder.Output}

	return defaultResolver.Resolve(executionContext, logger, configuration, credentials)
}

// DefaultRunnerResolver wires the production pipeline dependencies.
type DefaultRunnerResolver struct {
	Output io.Writer
}

// Resolve builds a Runner backed by the git shell, the Gemini API, and the GitHub API.
func (resolver *DefaultRunnerResolver) Resolve(executionContext context.Context, logger *zap.Logger, configuration CommandConfiguration, credentials secrets.Credentials) (RunExecutor, error) {
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	if managerError != nil {
		return nil, managerError
	}

	contentGenerator, generatorError := sentiment.NewGeminiGenerator(executionContext, credentials.GeminiAPIKey, configuration.Model)
	if generatorError != nil {
		return nil, generatorError
	}

	reviewClassifier, classifierError := sentiment.NewClassifier(sentiment.Dependencies{Generator: contentGenerator, Logger: logger}, sentiment.Options{})
	if classifierError != nil {
		return nil, classifierError
	}

	accessVerifier, verifierError := githubrepo.NewClient(executionContext, credentials.PushToken)
	if verifierError != nil {
		return nil, verifierError
	}

	return NewRunner(&Environment{
		Repository:     repositoryManager,
		Classifier:     reviewClassifier,
		AccessVerifier: accessVerifier,
		Logger:         logger,
		Output:         resolver.Output,
	})
}
