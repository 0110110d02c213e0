// Package githubrepo verifies remote repository access through the GitHub API
// before the pipeline attempts a token-authenticated push.
package githubrepo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

const (
	tokenRequiredMessageConstant          = "github token must be provided"
	ownerRequiredMessageConstant          = "repository owner must be provided"
	repositoryRequiredMessageConstant     = "repository name must be provided"
	repositoryNotFoundTemplateConstant    = "repository %s/%s not found or token lacks access"
	repositoryLookupErrorTemplateConstant = "failed to look up repository %s/%s: %w"
	pushAccessDeniedTemplateConstant      = "token lacks push permission on %s/%s"
	pushPermissionNameConstant            = "push"
)

// ErrTokenRequired indicates the GitHub token option was empty.
var ErrTokenRequired = errors.New(tokenRequiredMessageConstant)

// ErrOwnerRequired indicates the repository owner option was empty.
var ErrOwnerRequired = errors.New(ownerRequiredMessageConstant)

// ErrRepositoryRequired indicates the repository name option was empty.
var ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)

// RepositoryAPI abstracts the GitHub repository lookup used by the preflight check.
type RepositoryAPI interface {
	Get(executionContext context.Context, owner string, repository string) (*github.Repository, *github.Response, error)
}

// Client answers repository access questions through the GitHub API.
type Client struct {
	repositories RepositoryAPI
}

// NewClient constructs a Client authenticated with the supplied token.
func NewClient(executionContext context.Context, token string) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenRequired
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	httpClient := oauth2.NewClient(executionContext, tokenSource)
	apiClient := github.NewClient(httpClient)

	return &Client{repositories: apiClient.Repositories}, nil
}

// NewClientWithRepositoryAPI constructs a Client around a caller-provided repository API.
func NewClientWithRepositoryAPI(repositoryAPI RepositoryAPI) *Client {
	return &Client{repositories: repositoryAPI}
}

// VerifyPushAccess confirms the repository exists and the authenticated token can push to it.
func (client *Client) VerifyPushAccess(executionContext context.Context, owner string, repository string) error {
	trimmedOwner := strings.TrimSpace(owner)
	if len(trimmedOwner) == 0 {
		return ErrOwnerRequired
	}
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return ErrRepositoryRequired
	}

	repositoryDetails, lookupResponse, lookupError := client.repositories.Get(executionContext, trimmedOwner, trimmedRepository)
	if lookupError != nil {
		if lookupResponse != nil && lookupResponse.StatusCode == http.StatusNotFound {
			return fmt.Errorf(repositoryNotFoundTemplateConstant, trimmedOwner, trimmedRepository)
		}
		return fmt.Errorf(repositoryLookupErrorTemplateConstant, trimmedOwner, trimmedRepository, lookupError)
	}

	if !repositoryDetails.GetPermissions()[pushPermissionNameConstant] {
		return fmt.Errorf(pushAccessDeniedTemplateConstant, trimmedOwner, trimmedRepository)
	}

	return nil
}
