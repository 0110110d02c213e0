package pipeline

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/reviewtools/sentiflow/internal/gitrepo"
	"github.com/reviewtools/sentiflow/internal/sentiment"
	"github.com/reviewtools/sentiflow/internal/workbook"
)

// Operation performs one ordered step of a pipeline run.
type Operation interface {
	Name() string
	Execute(executionContext context.Context, environment *Environment, state *State) error
}

// RepositoryService abstracts the working-copy operations the pipeline performs.
type RepositoryService interface {
	EnsureClone(executionContext context.Context, remoteURL string, repositoryPath string, branchName string) error
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	StageFiles(executionContext context.Context, repositoryPath string, filePaths []string) error
	Commit(executionContext context.Context, repositoryPath string, commitMessage string, identity gitrepo.CommitIdentity) (gitrepo.CommitOutcome, error)
	CurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	Push(executionContext context.Context, repositoryPath string, pushURL string, branchName string) error
}

// ReviewClassifier abstracts sentiment classification of a single review.
type ReviewClassifier interface {
	Classify(executionContext context.Context, reviewText string) (sentiment.Label, error)
}

// PushAccessVerifier abstracts the GitHub preflight check.
type PushAccessVerifier interface {
	VerifyPushAccess(executionContext context.Context, owner string, repository string) error
}

// Environment exposes shared dependencies to pipeline operations.
type Environment struct {
	Repository     RepositoryService
	Classifier     ReviewClassifier
	AccessVerifier PushAccessVerifier
	Logger         *zap.Logger
	Clock          func() time.Time
	Output         io.Writer
}

// SheetResult captures the classification outcome of a single worksheet.
type SheetResult struct {
	SheetName         string
	Skipped           bool
	SkipReason        string
	ReviewsClassified int
	ErrorCount        int
}

// State accumulates observable results across pipeline operations.
type State struct {
	Options           Options
	Remote            gitrepo.RemoteURL
	WorkbookPath      string
	SheetResults      []SheetResult
	ReviewsClassified int
	ErrorCount        int
	CommitOutcome     gitrepo.CommitOutcome
	Pushed            bool
}

// RunLogEntryForState converts accumulated counts into a workbook run-log entry.
func (state *State) RunLogEntryForState(timestamp time.Time) workbook.RunLogEntry {
	return workbook.RunLogEntry{
		Timestamp:         timestamp,
		ReviewsClassified: state.ReviewsClassified,
		ErrorCount:        state.ErrorCount,
	}
}
