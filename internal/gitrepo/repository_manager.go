package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reviewtools/sentiflow/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	repositoryPathRequiredMessageConstant       = "repository path must be provided"
	remoteURLRequiredMessageConstant            = "remote url must be provided"
	branchNameRequiredMessageConstant           = "branch name must be provided"
	commitMessageRequiredMessageConstant        = "commit message must be provided"
	cloneFailureTemplateConstant                = "failed to clone %s: %w"
	fetchFailureTemplateConstant                = "failed to fetch updates: %w"
	checkoutFailureTemplateConstant             = "failed to checkout branch %q: %w"
	pullFailureTemplateConstant                 = "failed to pull latest changes: %w"
	statusFailureTemplateConstant               = "failed to inspect working tree: %w"
	stageFailureTemplateConstant                = "failed to stage %s: %w"
	commitFailureTemplateConstant               = "failed to create commit: %w"
	pushFailureTemplateConstant                 = "failed to push to %s: %w"
	gitDirectoryNameConstant                    = ".git"
	gitCloneSubcommandConstant                  = "clone"
	gitCloneBranchFlagConstant                  = "--branch"
	gitCloneSingleBranchFlagConstant            = "--single-branch"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchPruneFlagConstant                   = "--prune"
	gitCheckoutSubcommandConstant               = "checkout"
	gitPullSubcommandConstant                   = "pull"
	gitPullFastForwardFlagConstant              = "--ff-only"
	gitStatusSubcommandConstant                 = "status"
	gitStatusPorcelainFlagConstant              = "--porcelain"
	gitAddSubcommandConstant                    = "add"
	gitCommitSubcommandConstant                 = "commit"
	gitCommitMessageFlagConstant                = "-m"
	gitConfigurationFlagConstant                = "-c"
	gitUserNameSettingTemplateConstant          = "user.name=%s"
	gitUserEmailSettingTemplateConstant         = "user.email=%s"
	gitPushSubcommandConstant                   = "push"
	gitHeadRefspecTemplateConstant              = "HEAD:%s"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitRevParseAbbrevRefFlagConstant            = "--abbrev-ref"
	gitHeadReferenceConstant                    = "HEAD"
	currentBranchFailureTemplateConstant        = "failed to resolve current branch: %w"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	nothingToCommitOutputFragmentConstant       = "nothing to commit"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates the repository path option was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrRemoteURLRequired indicates the remote URL option was empty.
var ErrRemoteURLRequired = errors.New(remoteURLRequiredMessageConstant)

// ErrBranchNameRequired indicates the branch name option was empty.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrCommitMessageRequired indicates the commit message option was empty.
var ErrCommitMessageRequired = errors.New(commitMessageRequiredMessageConstant)

// GitExecutor abstracts git command execution for repository management.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommitOutcome reports the observable result of a commit attempt.
type CommitOutcome string

// Supported commit outcomes.
const (
	CommitOutcomeCreated         CommitOutcome = CommitOutcome("created")
	CommitOutcomeNothingToCommit CommitOutcome = CommitOutcome("nothing-to-commit")
)

// CommitIdentity describes the author identity applied to pipeline commits.
type CommitIdentity struct {
	Name  string
	Email string
}

// RepositoryManager coordinates working-copy operations through git.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// EnsureClone guarantees a working copy of the remote exists at repositoryPath on the requested branch.
// Existing clones are refreshed with fetch, checkout, and a fast-forward pull.
func (manager *RepositoryManager) EnsureClone(executionContext context.Context, remoteURL string, repositoryPath string, branchName string) error {
	trimmedRemoteURL := strings.TrimSpace(remoteURL)
	if len(trimmedRemoteURL) == 0 {
		return ErrRemoteURLRequired
	}
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return ErrRepositoryPathRequired
	}
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}

	if manager.cloneExists(trimmedRepositoryPath) {
		return manager.refreshClone(executionContext, trimmedRepositoryPath, trimmedBranchName)
	}

	cloneArguments := []string{
		gitCloneSubcommandConstant,
		gitCloneBranchFlagConstant, trimmedBranchName,
		gitCloneSingleBranchFlagConstant,
		trimmedRemoteURL,
		trimmedRepositoryPath,
	}
	if cloneError := manager.executeGit(executionContext, execshell.CommandDetails{Arguments: cloneArguments}); cloneError != nil {
		return fmt.Errorf(cloneFailureTemplateConstant, RedactCredentials(trimmedRemoteURL), cloneError)
	}
	return nil
}

// CheckCleanWorktree reports whether the working tree at repositoryPath has no pending changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return false, ErrRepositoryPathRequired
	}

	statusResult, statusError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant},
		WorkingDirectory: trimmedRepositoryPath,
	})
	if statusError != nil {
		return false, fmt.Errorf(statusFailureTemplateConstant, statusError)
	}

	return len(strings.TrimSpace(statusResult.StandardOutput)) == 0, nil
}

// StageFiles stages the supplied paths inside the repository.
func (manager *RepositoryManager) StageFiles(executionContext context.Context, repositoryPath string, filePaths []string) error {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return ErrRepositoryPathRequired
	}

	stageArguments := append([]string{gitAddSubcommandConstant}, filePaths...)
	if stageError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        stageArguments,
		WorkingDirectory: trimmedRepositoryPath,
	}); stageError != nil {
		return fmt.Errorf(stageFailureTemplateConstant, strings.Join(filePaths, " "), stageError)
	}
	return nil
}

// Commit records staged changes with the supplied message and identity.
// A clean working tree is reported as CommitOutcomeNothingToCommit rather than an error.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, commitMessage string, identity CommitIdentity) (CommitOutcome, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return CommitOutcomeNothingToCommit, ErrRepositoryPathRequired
	}
	trimmedCommitMessage := strings.TrimSpace(commitMessage)
	if len(trimmedCommitMessage) == 0 {
		return CommitOutcomeNothingToCommit, ErrCommitMessageRequired
	}

	commitArguments := []string{}
	if len(strings.TrimSpace(identity.Name)) > 0 {
		commitArguments = append(commitArguments, gitConfigurationFlagConstant, fmt.Sprintf(gitUserNameSettingTemplateConstant, strings.TrimSpace(identity.Name)))
	}
	if len(strings.TrimSpace(identity.Email)) > 0 {
		commitArguments = append(commitArguments, gitConfigurationFlagConstant, fmt.Sprintf(gitUserEmailSettingTemplateConstant, strings.TrimSpace(identity.Email)))
	}
	commitArguments = append(commitArguments, gitCommitSubcommandConstant, gitCommitMessageFlagConstant, trimmedCommitMessage)

	commitResult, commitError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        commitArguments,
		WorkingDirectory: trimmedRepositoryPath,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	})
	if commitError != nil {
		if commitReportsNothingToCommit(commitResult) {
			return CommitOutcomeNothingToCommit, nil
		}
		return CommitOutcomeNothingToCommit, fmt.Errorf(commitFailureTemplateConstant, commitError)
	}

	return CommitOutcomeCreated, nil
}

// CurrentBranch reports the branch name HEAD currently points at inside the repository.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return "", ErrRepositoryPathRequired
	}

	revParseResult, revParseError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitRevParseAbbrevRefFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: trimmedRepositoryPath,
	})
	if revParseError != nil {
		return "", fmt.Errorf(currentBranchFailureTemplateConstant, revParseError)
	}

	return strings.TrimSpace(revParseResult.StandardOutput), nil
}

// Push uploads the current HEAD to the supplied remote URL and branch.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, pushURL string, branchName string) error {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return ErrRepositoryPathRequired
	}
	trimmedPushURL := strings.TrimSpace(pushURL)
	if len(trimmedPushURL) == 0 {
		return ErrRemoteURLRequired
	}
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}

	pushArguments := []string{
		gitPushSubcommandConstant,
		trimmedPushURL,
		fmt.Sprintf(gitHeadRefspecTemplateConstant, trimmedBranchName),
	}
	if pushError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        pushArguments,
		WorkingDirectory: trimmedRepositoryPath,
	}); pushError != nil {
		return fmt.Errorf(pushFailureTemplateConstant, RedactCredentials(trimmedPushURL), pushError)
	}
	return nil
}

func (manager *RepositoryManager) refreshClone(executionContext context.Context, repositoryPath string, branchName string) error {
	if fetchError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, gitFetchPruneFlagConstant},
		WorkingDirectory: repositoryPath,
	}); fetchError != nil {
		return fmt.Errorf(fetchFailureTemplateConstant, fetchError)
	}

	if checkoutError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, branchName},
		WorkingDirectory: repositoryPath,
	}); checkoutError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, branchName, checkoutError)
	}

	if pullError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPullSubcommandConstant, gitPullFastForwardFlagConstant},
		WorkingDirectory: repositoryPath,
	}); pullError != nil {
		return fmt.Errorf(pullFailureTemplateConstant, pullError)
	}

	return nil
}

func (manager *RepositoryManager) cloneExists(repositoryPath string) bool {
	gitDirectoryInformation, statError := os.Stat(filepath.Join(repositoryPath, gitDirectoryNameConstant))
	if statError != nil {
		return false
	}
	return gitDirectoryInformation.IsDir()
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, details execshell.CommandDetails) error {
	if details.EnvironmentVariables == nil {
		details.EnvironmentVariables = map[string]string{}
	}
	details.EnvironmentVariables[gitTerminalPromptEnvironmentNameConstant] = gitTerminalPromptEnvironmentDisableConstant
	_, executionError := manager.executor.ExecuteGit(executionContext, details)
	return executionError
}

func commitReportsNothingToCommit(result execshell.ExecutionResult) bool {
	combinedOutput := strings.ToLower(result.StandardOutput + result.StandardError)
	return strings.Contains(combinedOutput, nothingToCommitOutputFragmentConstant)
}
