package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/reviewtools/sentiflow/internal/gitrepo"
	"github.com/reviewtools/sentiflow/internal/pipeline"
	"github.com/reviewtools/sentiflow/internal/secrets"
)

const (
	geminiKeyCheckNameConstant     = "gemini-api-key"
	pushTokenCheckNameConstant     = "push-token"
	remoteURLCheckNameConstant     = "remote-url"
	pushAccessCheckNameConstant    = "push-access"
	workbookCheckNameConstant      = "workbook"
	cronExpressionCheckName        = "schedule"
	secretPresentDetailConstant    = "present"
	remoteParsedDetailTemplate     = "parsed %s"
	pushAccessOKDetailConstant     = "token can push"
	pushAccessSkippedDetail        = "skipped, no push token resolved"
	remoteSkippedDetailConstant    = "skipped, remote URL invalid"
	nonGitHubRemoteDetailConstant  = "skipped, remote is not hosted on github.com"
	workbookPresentDetailTemplate  = "found %s"
	workbookAbsentDetailTemplate   = "repository not cloned yet, expected %s after first run"
	workbookMissingDetailTemplate  = "%s missing from existing clone"
	scheduleValidDetailTemplate    = "fires next at %s"
	checkFailedLogMessageConstant  = "preflight check failed"
	checkPassedLogMessageConstant  = "preflight check passed"
	logFieldCheckNameConstant      = "check"
	logFieldCheckDetailConstant    = "detail"
	githubHostNameConstant         = "github.com"
	accessVerifierCreationTemplate = "create GitHub client: %v"
)

// CheckResult captures the outcome of a single preflight check.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// Report aggregates every preflight check outcome.
type Report struct {
	Results []CheckResult
}

// Passed reports whether every check in the report succeeded.
func (report Report) Passed() bool {
	for _, result := range report.Results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// AccessVerifier checks push permission on a GitHub repository.
type AccessVerifier interface {
	VerifyPushAccess(executionContext context.Context, owner string, repository string) error
}

// VerifierFactory builds an access verifier for the supplied token.
type VerifierFactory func(executionContext context.Context, token string) (AccessVerifier, error)

// ScheduleValidator reports the next firing time for a cron expression.
type ScheduleValidator func(cronExpression string) (string, error)

// Dependencies carries the collaborators required by the checker.
type Dependencies struct {
	Logger               *zap.Logger
	EnvironmentVariables map[string]string
	VerifierFactory      VerifierFactory
	ScheduleValidator    ScheduleValidator
}

// Checker runs every preflight check against a pipeline configuration.
type Checker struct {
	logger               *zap.Logger
	environmentVariables map[string]string
	verifierFactory      VerifierFactory
	scheduleValidator    ScheduleValidator
}

// NewChecker constructs a Checker from the supplied dependencies.
func NewChecker(dependencies Dependencies) *Checker {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Checker{
		logger:               logger,
		environmentVariables: dependencies.EnvironmentVariables,
		verifierFactory:      dependencies.VerifierFactory,
		scheduleValidator:    dependencies.ScheduleValidator,
	}
}

// Run executes every check and returns the aggregated report.
func (checker *Checker) Run(executionContext context.Context, configuration pipeline.CommandConfiguration) Report {
	configuration = configuration.Sanitize()

	report := Report{}

	_, geminiError := secrets.ResolveGeminiAPIKey(checker.environmentVariables)
	report.Results = append(report.Results, checker.record(buildResult(geminiKeyCheckNameConstant, geminiError, secretPresentDetailConstant)))

	pushToken, pushTokenError := secrets.ResolvePushToken(checker.environmentVariables)
	report.Results = append(report.Results, checker.record(buildResult(pushTokenCheckNameConstant, pushTokenError, secretPresentDetailConstant)))

	parsedRemote, remoteParseError := gitrepo.ParseRemoteURL(configuration.RemoteURL)
	report.Results = append(report.Results, checker.record(buildResult(remoteURLCheckNameConstant, remoteParseError, fmt.Sprintf(remoteParsedDetailTemplate, parsedRemote.CanonicalHTTPSURL()))))

	report.Results = append(report.Results, checker.record(checker.checkPushAccess(executionContext, parsedRemote, pushToken, pushTokenError == nil && remoteParseError == nil)))
	report.Results = append(report.Results, checker.record(checker.checkWorkbook(configuration)))
	report.Results = append(report.Results, checker.record(checker.checkSchedule(configuration.Schedule)))

	return report
}

func (checker *Checker) checkPushAccess(executionContext context.Context, remote gitrepo.RemoteURL, pushToken string, prerequisitesMet bool) CheckResult {
	if !prerequisitesMet {
		detail := pushAccessSkippedDetail
		if len(pushToken) > 0 {
			detail = remoteSkippedDetailConstant
		}
		return CheckResult{Name: pushAccessCheckNameConstant, Passed: false, Detail: detail}
	}
	if remote.Host != githubHostNameConstant {
		return CheckResult{Name: pushAccessCheckNameConstant, Passed: true, Detail: nonGitHubRemoteDetailConstant}
	}
	if checker.verifierFactory == nil {
		return CheckResult{Name: pushAccessCheckNameConstant, Passed: true, Detail: nonGitHubRemoteDetailConstant}
	}

	accessVerifier, verifierError := checker.verifierFactory(executionContext, pushToken)
	if verifierError != nil {
		return CheckResult{Name: pushAccessCheckNameConstant, Passed: false, Detail: fmt.Sprintf(accessVerifierCreationTemplate, verifierError)}
	}

	if accessError := accessVerifier.VerifyPushAccess(executionContext, remote.Owner, remote.Repository); accessError != nil {
		return CheckResult{Name: pushAccessCheckNameConstant, Passed: false, Detail: accessError.Error()}
	}

	return CheckResult{Name: pushAccessCheckNameConstant, Passed: true, Detail: pushAccessOKDetailConstant}
}

func (checker *Checker) checkWorkbook(configuration pipeline.CommandConfiguration) CheckResult {
	workbookPath := filepath.Join(configuration.RepositoryPath, configuration.WorkbookPath)

	if _, repositoryStatError := os.Stat(configuration.RepositoryPath); repositoryStatError != nil {
		return CheckResult{Name: workbookCheckNameConstant, Passed: true, Detail: fmt.Sprintf(workbookAbsentDetailTemplate, workbookPath)}
	}

	if _, workbookStatError := os.Stat(workbookPath); workbookStatError != nil {
		return CheckResult{Name: workbookCheckNameConstant, Passed: false, Detail: fmt.Sprintf(workbookMissingDetailTemplate, workbookPath)}
	}

	return CheckResult{Name: workbookCheckNameConstant, Passed: true, Detail: fmt.Sprintf(workbookPresentDetailTemplate, workbookPath)}
}

func (checker *Checker) checkSchedule(cronExpression string) CheckResult {
	if checker.scheduleValidator == nil {
		return CheckResult{Name: cronExpressionCheckName, Passed: true, Detail: cronExpression}
	}

	nextFiring, validationError := checker.scheduleValidator(cronExpression)
	if validationError != nil {
		return CheckResult{Name: cronExpressionCheckName, Passed: false, Detail: validationError.Error()}
	}

	return CheckResult{Name: cronExpressionCheckName, Passed: true, Detail: fmt.Sprintf(scheduleValidDetailTemplate, nextFiring)}
}

func (checker *Checker) record(result CheckResult) CheckResult {
	if result.Passed {
		checker.logger.Info(checkPassedLogMessageConstant, zap.String(logFieldCheckNameConstant, result.Name), zap.String(logFieldCheckDetailConstant, result.Detail))
	} else {
		checker.logger.Warn(checkFailedLogMessageConstant, zap.String(logFieldCheckNameConstant, result.Name), zap.String(logFieldCheckDetailConstant, result.Detail))
	}
	return result
}

func buildResult(checkName string, checkError error, successDetail string) CheckResult {
	if checkError != nil {
		return CheckResult{Name: checkName, Passed: false, Detail: checkError.Error()}
	}
	return CheckResult{Name: checkName, Passed: true, Detail: successDetail}
}
