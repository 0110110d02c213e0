package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/reviewtools/sentiflow/internal/gitrepo"
	"github.com/reviewtools/sentiflow/internal/pipeline"
	"github.com/reviewtools/sentiflow/internal/sentiment"
	"github.com/reviewtools/sentiflow/internal/workbook"
)

const (
	testPipelineRemoteURLConstant     = "https://github.com/reviewtools/reviews-data.git"
	testPipelineBranchConstant        = "main"
	testPipelineTokenConstant         = "pipeline-test-token"
	testPipelineWorkbookNameConstant  = "A2b_January_month.xlsx"
	testPipelineSheetNameConstant     = "Sheet1"
	testPipelinePositiveReview        = "Absolutely love it"
	testPipelineNegativeReview        = "Would not recommend"
	testPipelineCommitMessageConstant = "Update sentiment analysis results"
)

type fakeRepositoryService struct {
	cleanWorktree    bool
	ensureCloneCalls int
	stagedPaths      []string
	commitMessages   []string
	pushURLs         []string
	commitOutcome    gitrepo.CommitOutcome
	ensureCloneError error
	checkedOutBranch string
	clonedBranch     string
}

func (service *fakeRepositoryService) EnsureClone(_ context.Context, _ string, _ string, branchName string) error {
	service.ensureCloneCalls++
	service.clonedBranch = branchName
	return service.ensureCloneError
}

func (service *fakeRepositoryService) CheckCleanWorktree(context.Context, string) (bool, error) {
	return service.cleanWorktree, nil
}

func (service *fakeRepositoryService) StageFiles(_ context.Context, _ string, filePaths []string) error {
	service.stagedPaths = append(service.stagedPaths, filePaths...)
	return nil
}

func (service *fakeRepositoryService) Commit(_ context.Context, _ string, commitMessage string, _ gitrepo.CommitIdentity) (gitrepo.CommitOutcome, error) {
	service.commitMessages = append(service.commitMessages, commitMessage)
	if len(service.commitOutcome) == 0 {
		return gitrepo.CommitOutcomeCreated, nil
	}
	return service.commitOutcome, nil
}

func (service *fakeRepositoryService) CurrentBranch(context.Context, string) (string, error) {
	if len(service.checkedOutBranch) > 0 {
		return service.checkedOutBranch, nil
	}
	return service.clonedBranch, nil
}

func (service *fakeRepositoryService) Push(_ context.Context, _ string, pushURL string, _ string) error {
	service.pushURLs = append(service.pushURLs, pushURL)
	return nil
}

type mappedClassifier struct {
	labels   map[string]sentiment.Label
	failures map[string]error
}

func (classifier *mappedClassifier) Classify(_ context.Context, reviewText string) (sentiment.Label, error) {
	if failure, exists := classifier.failures[reviewText]; exists {
		return sentiment.LabelError, failure
	}
	if label, exists := classifier.labels[reviewText]; exists {
		return label, nil
	}
	return sentiment.LabelNeutral, nil
}

type recordingAccessVerifier struct {
	verificationError error
	observedCalls     int
}

func (verifier *recordingAccessVerifier) VerifyPushAccess(context.Context, string, string) error {
	verifier.observedCalls++
	return verifier.verificationError
}

func createPipelineWorkbook(testInstance *testing.T, repositoryPath string) {
	testInstance.Helper()

	workbookFile := excelize.NewFile()
	defer func() { require.NoError(testInstance, workbookFile.Close()) }()

	require.NoError(testInstance, workbookFile.SetCellValue(testPipelineSheetNameConstant, "A1", workbook.ReviewsColumnHeader))
	require.NoError(testInstance, workbookFile.SetCellValue(testPipelineSheetNameConstant, "A2", testPipelinePositiveReview))
	require.NoError(testInstance, workbookFile.SetCellValue(testPipelineSheetNameConstant, "A3", testPipelineNegativeReview))
	require.NoError(testInstance, workbookFile.SaveAs(filepath.Join(repositoryPath, testPipelineWorkbookNameConstant)))
}

func pipelineOptions(repositoryPath string) pipeline.Options {
	return pipeline.Options{
		RemoteURL:      testPipelineRemoteURLConstant,
		RepositoryPath: repositoryPath,
		BranchName:     testPipelineBranchConstant,
		WorkbookPath:   testPipelineWorkbookNameConstant,
		CommitMessage:  testPipelineCommitMessageConstant,
		PushToken:      testPipelineTokenConstant,
	}
}

func TestNewRunnerRequiresDependencies(testInstance *testing.T) {
	runner, creationError := pipeline.NewRunner(&pipeline.Environment{})
	require.Nil(testInstance, runner)
	require.ErrorIs(testInstance, creationError, pipeline.ErrRunnerDependenciesMissing)
}

func TestExecuteValidatesOptions(testInstance *testing.T) {
	environment := &pipeline.Environment{
		Repository: &fakeRepositoryService{},
		Classifier: &mappedClassifier{},
	}
	runner, creationError := pipeline.NewRunner(environment)
	require.NoError(testInstance, creationError)

	_, missingRemoteError := runner.Execute(context.Background(), pipeline.Options{PushToken: testPipelineTokenConstant})
	require.ErrorIs(testInstance, missingRemoteError, pipeline.ErrRemoteURLRequired)

	_, missingTokenError := runner.Execute(context.Background(), pipeline.Options{RemoteURL: testPipelineRemoteURLConstant})
	require.ErrorIs(testInstance, missingTokenError, pipeline.ErrPushTokenRequired)
}

func TestExecuteClassifiesCommitsAndPushes(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	createPipelineWorkbook(testInstance, repositoryPath)

	repositoryService := &fakeRepositoryService{cleanWorktree: false}
	classifier := &mappedClassifier{labels: map[string]sentiment.Label{
		testPipelinePositiveReview: sentiment.LabelPositive,
		testPipelineNegativeReview: sentiment.LabelNegative,
	}}
	outputBuffer := &bytes.Buffer{}

	environment := &pipeline.Environment{
		Repository: repositoryService,
		Classifier: classifier,
		Clock:      func() time.Time { return time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC) },
		Output:     outputBuffer,
	}
	runner, creationError := pipeline.NewRunner(environment)
	require.NoError(testInstance, creationError)

	state, executionError := runner.Execute(context.Background(), pipelineOptions(repositoryPath))
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, 1, repositoryService.ensureCloneCalls)
	require.Equal(testInstance, 2, state.ReviewsClassified)
	require.Zero(testInstance, state.ErrorCount)
	require.Equal(testInstance, gitrepo.CommitOutcomeCreated, state.CommitOutcome)
	require.True(testInstance, state.Pushed)
	require.Equal(testInstance, []string{testPipelineWorkbookNameConstant}, repositoryService.stagedPaths)
	require.Equal(testInstance, []string{testPipelineCommitMessageConstant}, repositoryService.commitMessages)
	require.Len(testInstance, repositoryService.pushURLs, 1)
	require.Contains(testInstance, repositoryService.pushURLs[0], testPipelineTokenConstant)
	require.Contains(testInstance, outputBuffer.String(), "ANALYZED: 2 reviews")

	reopenedStore, reopenError := workbook.Open(filepath.Join(repositoryPath, testPipelineWorkbookNameConstant))
	require.NoError(testInstance, reopenError)
	defer func() { require.NoError(testInstance, reopenedStore.Close()) }()

	preparation, preparationError := reopenedStore.PrepareSentimentColumn(testPipelineSheetNameConstant)
	require.NoError(testInstance, preparationError)
	require.True(testInstance, preparation.Skipped)
}

func TestExecuteSucceedsWhenNothingToCommit(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	createPipelineWorkbook(testInstance, repositoryPath)

	repositoryService := &fakeRepositoryService{cleanWorktree: true}
	environment := &pipeline.Environment{
		Repository: repositoryService,
		Classifier: &mappedClassifier{},
	}
	runner, creationError := pipeline.NewRunner(environment)
	require.NoError(testInstance, creationError)

	state, executionError := runner.Execute(context.Background(), pipelineOptions(repositoryPath))
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, gitrepo.CommitOutcomeNothingToCommit, state.CommitOutcome)
	require.False(testInstance, state.Pushed)
	require.Empty(testInstance, repositoryService.stagedPaths)
	require.Empty(testInstance, repositoryService.pushURLs)
}

func TestExecuteRecordsClassificationFailuresWithoutAborting(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	createPipelineWorkbook(testInstance, repositoryPath)

	classifier := &mappedClassifier{
		labels:   map[string]sentiment.Label{testPipelinePositiveReview: sentiment.LabelPositive},
		failures: map[string]error{testPipelineNegativeReview: errors.New("quota exhausted after 5 attempts")},
	}
	environment := &pipeline.Environment{
		Repository: &fakeRepositoryService{},
		Classifier: classifier,
	}
	runner, creationError := pipeline.NewRunner(environment)
	require.NoError(testInstance, creationError)

	state, executionError := runner.Execute(context.Background(), pipelineOptions(repositoryPath))
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, 2, state.ReviewsClassified)
	require.Equal(testInstance, 1, state.ErrorCount)
}

func TestExecuteVerifiesRemoteAccessWhenRequested(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	createPipelineWorkbook(testInstance, repositoryPath)

	accessVerifier := &recordingAccessVerifier{verificationError: errors.New("token lacks push permission")}
	environment := &pipeline.Environment{
		Repository:     &fakeRepositoryService{},
		Classifier:     &mappedClassifier{},
		AccessVerifier: accessVerifier,
	}
	runner, creationError := pipeline.NewRunner(environment)
	require.NoError(testInstance, creationError)

	options := pipelineOptions(repositoryPath)
	options.VerifyRemoteAccess = true

	_, executionError := runner.Execute(context.Background(), options)
	require.Error(testInstance, executionError)
	require.Equal(testInstance, 1, accessVerifier.observedCalls)
	require.Contains(testInstance, executionError.Error(), "ensure-repository")
}

func TestExecuteFailsWhenCloneFails(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()

	cloneFailure := errors.New("remote unreachable")
	environment := &pipeline.Environment{
		Repository: &fakeRepositoryService{ensureCloneError: cloneFailure},
		Classifier: &mappedClassifier{},
	}
	runner, creationError := pipeline.NewRunner(environment)
	require.NoError(testInstance, creationError)

	_, executionError := runner.Execute(context.Background(), pipelineOptions(repositoryPath))
	require.ErrorIs(testInstance, executionError, cloneFailure)
}

func TestExecuteRefusesPushFromUnexpectedBranch(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	createPipelineWorkbook(testInstance, repositoryPath)

	repositoryService := &fakeRepositoryService{cleanWorktree: false, checkedOutBranch: "release"}
	classifier := &mappedClassifier{labels: map[string]sentiment.Label{
		testPipelinePositiveReview: sentiment.LabelPositive,
		testPipelineNegativeReview: sentiment.LabelNegative,
	}}

	environment := &pipeline.Environment{
		Repository: repositoryService,
		Classifier: classifier,
	}
	runner, creationError := pipeline.NewRunner(environment)
	require.NoError(testInstance, creationError)

	state, executionError := runner.Execute(context.Background(), pipelineOptions(repositoryPath))
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "release")
	require.Contains(testInstance, executionError.Error(), testPipelineBranchConstant)
	require.False(testInstance, state.Pushed)
	require.Empty(testInstance, repositoryService.pushURLs)
}
