package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reviewtools/sentiflow/internal/gitrepo"
)

const (
	runnerDependenciesMessageConstant   = "pipeline runner requires repository and classifier dependencies"
	remoteURLRequiredMessageConstant    = "remote url must be configured"
	pushTokenRequiredMessageConstant    = "push token must be provided"
	operationFailureTemplateConstant    = "pipeline operation %s failed: %w"
	remoteParseFailureTemplateConstant  = "failed to parse remote url: %w"
	pipelineStartedMessageConstant      = "pipeline run started"
	pipelineCompletedMessageConstant    = "pipeline run completed"
	logFieldRemoteConstant              = "remote"
	logFieldBranchConstant              = "branch"
	logFieldWorkbookConstant            = "workbook"
	logFieldReviewsClassifiedConstant   = "reviews_classified"
	logFieldClassificationErrsConstant  = "classification_errors"
	logFieldCommitOutcomeConstant       = "commit_outcome"
	logFieldPushedConstant              = "pushed"
)

// ErrRunnerDependenciesMissing indicates required collaborators were absent.
var ErrRunnerDependenciesMissing = errors.New(runnerDependenciesMessageConstant)

// ErrRemoteURLRequired indicates the remote URL option was empty.
var ErrRemoteURLRequired = errors.New(remoteURLRequiredMessageConstant)

// ErrPushTokenRequired indicates the push token option was empty.
var ErrPushTokenRequired = errors.New(pushTokenRequiredMessageConstant)

// Options configures a single pipeline run.
type Options struct {
	RemoteURL          string
	RepositoryPath     string
	BranchName         string
	WorkbookPath       string
	CommitMessage      string
	CommitIdentity     gitrepo.CommitIdentity
	PushToken          string
	VerifyRemoteAccess bool
}

// Runner executes the ordered pipeline operations.
type Runner struct {
	operations  []Operation
	environment *Environment
}

// NewRunner constructs a Runner around the supplied environment.
func NewRunner(environment *Environment) (*Runner, error) {
	if environment == nil || environment.Repository == nil || environment.Classifier == nil {
		return nil, ErrRunnerDependenciesMissing
	}
	if environment.Logger == nil {
		environment.Logger = zap.NewNop()
	}
	if environment.Clock == nil {
		environment.Clock = time.Now
	}

	operations := []Operation{
		&ensureRepositoryOperation{},
		&analyzeWorkbookOperation{},
		&recordRunLogOperation{},
		&commitAndPushOperation{},
	}

	return &Runner{operations: operations, environment: environment}, nil
}

// Execute runs every pipeline operation in order, aborting on the first failure.
func (runner *Runner) Execute(executionContext context.Context, options Options) (*State, error) {
	sanitizedOptions, optionsError := sanitizeOptions(options)
	if optionsError != nil {
		return nil, optionsError
	}

	parsedRemote, parseError := gitrepo.ParseRemoteURL(sanitizedOptions.RemoteURL)
	if parseError != nil {
		return nil, fmt.Errorf(remoteParseFailureTemplateConstant, parseError)
	}

	state := &State{
		Options:      sanitizedOptions,
		Remote:       parsedRemote,
		WorkbookPath: filepath.Join(sanitizedOptions.RepositoryPath, sanitizedOptions.WorkbookPath),
	}

	runner.environment.Logger.Info(
		pipelineStartedMessageConstant,
		zap.String(logFieldRemoteConstant, parsedRemote.CanonicalHTTPSURL()),
		zap.String(logFieldBranchConstant, sanitizedOptions.BranchName),
		zap.String(logFieldWorkbookConstant, sanitizedOptions.WorkbookPath),
	)

	for operationIndex := range runner.operations {
		operation := runner.operations[operationIndex]
		if executionError := operation.Execute(executionContext, runner.environment, state); executionError != nil {
			return state, fmt.Errorf(operationFailureTemplateConstant, operation.Name(), executionError)
		}
	}

	runner.environment.Logger.Info(
		pipelineCompletedMessageConstant,
		zap.Int(logFieldReviewsClassifiedConstant, state.ReviewsClassified),
		zap.Int(logFieldClassificationErrsConstant, state.ErrorCount),
		zap.String(logFieldCommitOutcomeConstant, string(state.CommitOutcome)),
		zap.Bool(logFieldPushedConstant, state.Pushed),
	)

	return state, nil
}

func sanitizeOptions(options Options) (Options, error) {
	sanitized := options

	sanitized.RemoteURL = strings.TrimSpace(options.RemoteURL)
	if len(sanitized.RemoteURL) == 0 {
		return Options{}, ErrRemoteURLRequired
	}

	sanitized.PushToken = strings.TrimSpace(options.PushToken)
	if len(sanitized.PushToken) == 0 {
		return Options{}, ErrPushTokenRequired
	}

	defaults := DefaultCommandConfiguration()
	sanitized.RepositoryPath = defaultIfEmpty(options.RepositoryPath, defaults.RepositoryPath)
	sanitized.BranchName = defaultIfEmpty(options.BranchName, defaults.Branch)
	sanitized.WorkbookPath = defaultIfEmpty(options.WorkbookPath, defaults.WorkbookPath)
	sanitized.CommitMessage = defaultIfEmpty(options.CommitMessage, defaults.CommitMessage)

	return sanitized, nil
}
