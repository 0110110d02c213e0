package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/reviewtools/sentiflow/internal/gitrepo"
	"github.com/reviewtools/sentiflow/internal/sentiment"
	"github.com/reviewtools/sentiflow/internal/workbook"
)

const (
	ensureRepositoryOperationNameConstant = "ensure-repository"
	analyzeWorkbookOperationNameConstant  = "analyze-workbook"
	recordRunLogOperationNameConstant     = "record-run-log"
	commitAndPushOperationNameConstant    = "commit-and-push"

	accessVerificationFailureTemplateConstant = "remote access verification failed: %w"
	workbookOpenFailureTemplateConstant       = "failed to open workbook: %w"
	workbookSaveFailureTemplateConstant       = "failed to save workbook: %w"
	sheetPreparationFailureTemplateConstant   = "failed to prepare sheet %s: %w"
	sheetReviewsFailureTemplateConstant       = "failed to read reviews of sheet %s: %w"
	sentimentWriteFailureTemplateConstant     = "failed to record sentiment on sheet %s row %d: %w"
	cleanWorktreeFailureTemplateConstant      = "failed to verify working tree: %w"
	currentBranchFailureTemplateConstant      = "failed to resolve checked-out branch: %w"
	branchMismatchTemplateConstant            = "checked-out branch %q does not match target branch %q"

	sheetSkippedMessageConstant          = "sheet skipped"
	sheetClassifiedMessageConstant       = "sheet classified"
	reviewClassificationFailedMessage    = "review classification failed"
	nothingToCommitMessageConstant       = "working tree clean, nothing to commit"
	logFieldSheetConstant                = "sheet"
	logFieldSkipReasonConstant           = "skip_reason"
	logFieldRowConstant                  = "row"
	logFieldLabelConstant                = "label"
	logFieldReviewsConstant              = "reviews"
	logFieldErrorsConstant               = "errors"
	runSummaryOutputTemplateConstant     = "ANALYZED: %d reviews (%d errors), commit %s\n"
	gitHubHostNameConstant               = "github.com"
)

type ensureRepositoryOperation struct{}

func (operation *ensureRepositoryOperation) Name() string {
	return ensureRepositoryOperationNameConstant
}

func (operation *ensureRepositoryOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	if state.Options.VerifyRemoteAccess && environment.AccessVerifier != nil && state.Remote.Host == gitHubHostNameConstant {
		if verificationError := environment.AccessVerifier.VerifyPushAccess(executionContext, state.Remote.Owner, state.Remote.Repository); verificationError != nil {
			return fmt.Errorf(accessVerificationFailureTemplateConstant, verificationError)
		}
	}

	cloneURL := state.Remote.AuthenticatedPushURL(state.Options.PushToken)
	return environment.Repository.EnsureClone(executionContext, cloneURL, state.Options.RepositoryPath, state.Options.BranchName)
}

type analyzeWorkbookOperation struct{}

func (operation *analyzeWorkbookOperation) Name() string {
	return analyzeWorkbookOperationNameConstant
}

func (operation *analyzeWorkbookOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	store, openError := workbook.Open(state.WorkbookPath)
	if openError != nil {
		return fmt.Errorf(workbookOpenFailureTemplateConstant, openError)
	}
	defer func() { _ = store.Close() }()

	for _, sheetName := range store.ReviewSheetNames() {
		sheetResult, sheetError := operation.classifySheet(executionContext, environment, store, sheetName)
		if sheetError != nil {
			return sheetError
		}
		state.SheetResults = append(state.SheetResults, sheetResult)
		state.ReviewsClassified += sheetResult.ReviewsClassified
		state.ErrorCount += sheetResult.ErrorCount
	}

	if saveError := store.Save(); saveError != nil {
		return fmt.Errorf(workbookSaveFailureTemplateConstant, saveError)
	}
	return nil
}

func (operation *analyzeWorkbookOperation) classifySheet(executionContext context.Context, environment *Environment, store *workbook.Store, sheetName string) (SheetResult, error) {
	preparation, preparationError := store.PrepareSentimentColumn(sheetName)
	if preparationError != nil {
		return SheetResult{}, fmt.Errorf(sheetPreparationFailureTemplateConstant, sheetName, preparationError)
	}

	if preparation.Skipped {
		environment.Logger.Info(
			sheetSkippedMessageConstant,
			zap.String(logFieldSheetConstant, sheetName),
			zap.String(logFieldSkipReasonConstant, preparation.SkipReason),
		)
		return SheetResult{SheetName: sheetName, Skipped: true, SkipReason: preparation.SkipReason}, nil
	}

	pendingReviews, reviewsError := store.PendingReviews(sheetName, preparation.ReviewsColumn)
	if reviewsError != nil {
		return SheetResult{}, fmt.Errorf(sheetReviewsFailureTemplateConstant, sheetName, reviewsError)
	}

	sheetResult := SheetResult{SheetName: sheetName}
	for _, pendingReview := range pendingReviews {
		label, classificationError := environment.Classifier.Classify(executionContext, pendingReview.Text)
		if classificationError != nil {
			if executionContext.Err() != nil {
				return SheetResult{}, executionContext.Err()
			}
			environment.Logger.Warn(
				reviewClassificationFailedMessage,
				zap.String(logFieldSheetConstant, sheetName),
				zap.Int(logFieldRowConstant, pendingReview.RowNumber),
				zap.Error(classificationError),
			)
			label = sentiment.LabelError
			sheetResult.ErrorCount++
		}

		if writeError := store.SetSentiment(sheetName, pendingReview.RowNumber, preparation.SentimentColumn, string(label)); writeError != nil {
			return SheetResult{}, fmt.Errorf(sentimentWriteFailureTemplateConstant, sheetName, pendingReview.RowNumber, writeError)
		}
		sheetResult.ReviewsClassified++
	}

	environment.Logger.Info(
		sheetClassifiedMessageConstant,
		zap.String(logFieldSheetConstant, sheetName),
		zap.Int(logFieldReviewsConstant, sheetResult.ReviewsClassified),
		zap.Int(logFieldErrorsConstant, sheetResult.ErrorCount),
	)
	return sheetResult, nil
}

type recordRunLogOperation struct{}

func (operation *recordRunLogOperation) Name() string {
	return recordRunLogOperationNameConstant
}

func (operation *recordRunLogOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	store, openError := workbook.Open(state.WorkbookPath)
	if openError != nil {
		return fmt.Errorf(workbookOpenFailureTemplateConstant, openError)
	}
	defer func() { _ = store.Close() }()

	if appendError := store.AppendRunLogEntry(state.RunLogEntryForState(environment.Clock())); appendError != nil {
		return appendError
	}

	if saveError := store.Save(); saveError != nil {
		return fmt.Errorf(workbookSaveFailureTemplateConstant, saveError)
	}
	return nil
}

type commitAndPushOperation struct{}

func (operation *commitAndPushOperation) Name() string {
	return commitAndPushOperationNameConstant
}

func (operation *commitAndPushOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	clean, cleanError := environment.Repository.CheckCleanWorktree(executionContext, state.Options.RepositoryPath)
	if cleanError != nil {
		return fmt.Errorf(cleanWorktreeFailureTemplateConstant, cleanError)
	}
	if clean {
		environment.Logger.Info(nothingToCommitMessageConstant)
		state.CommitOutcome = gitrepo.CommitOutcomeNothingToCommit
		operation.writeSummary(environment, state)
		return nil
	}

	if stageError := environment.Repository.StageFiles(executionContext, state.Options.RepositoryPath, []string{state.Options.WorkbookPath}); stageError != nil {
		return stageError
	}

	commitOutcome, commitError := environment.Repository.Commit(executionContext, state.Options.RepositoryPath, state.Options.CommitMessage, state.Options.CommitIdentity)
	if commitError != nil {
		return commitError
	}
	state.CommitOutcome = commitOutcome

	if commitOutcome == gitrepo.CommitOutcomeCreated {
		checkedOutBranch, branchError := environment.Repository.CurrentBranch(executionContext, state.Options.RepositoryPath)
		if branchError != nil {
			return fmt.Errorf(currentBranchFailureTemplateConstant, branchError)
		}
		if checkedOutBranch != state.Options.BranchName {
			return fmt.Errorf(branchMismatchTemplateConstant, checkedOutBranch, state.Options.BranchName)
		}

		pushURL := state.Remote.AuthenticatedPushURL(state.Options.PushToken)
		if pushError := environment.Repository.Push(executionContext, state.Options.RepositoryPath, pushURL, state.Options.BranchName); pushError != nil {
			return pushError
		}
		state.Pushed = true
	}

	operation.writeSummary(environment, state)
	return nil
}

func (operation *commitAndPushOperation) writeSummary(environment *Environment, state *State) {
	if environment.Output == nil {
		return
	}
	commitDescription := strings.TrimSpace(string(state.CommitOutcome))
	fmt.Fprintf(environment.Output, runSummaryOutputTemplateConstant, state.ReviewsClassified, state.ErrorCount, commitDescription)
}
