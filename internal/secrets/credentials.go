// Package secrets resolves the credentials the pipeline consumes from the
// process environment: the Gemini API key and the git push token.
package secrets

import (
	"errors"
	"os"
	"strings"
)

// Environment variable names consumed by the pipeline.
const (
	EnvGeminiAPIKey      = "GEMINI_API_KEY"
	EnvPersonalAccessPAT = "PAT"
	EnvGitHubToken       = "GITHUB_TOKEN"
	EnvGitHubCLIToken    = "GH_TOKEN"
	geminiKeyMissingText = "GEMINI_API_KEY environment variable not set"
	pushTokenMissingText = "no push token found; set PAT, GITHUB_TOKEN, or GH_TOKEN"
)

// ErrGeminiAPIKeyMissing indicates the Gemini API key could not be resolved.
var ErrGeminiAPIKeyMissing = errors.New(geminiKeyMissingText)

// ErrPushTokenMissing indicates no git push credential could be resolved.
var ErrPushTokenMissing = errors.New(pushTokenMissingText)

var pushTokenPreference = []string{
	EnvPersonalAccessPAT,
	EnvGitHubToken,
	EnvGitHubCLIToken,
}

// Credentials carries the resolved secret material for a pipeline run.
type Credentials struct {
	GeminiAPIKey string
	PushToken    string
}

// ResolveGeminiAPIKey returns the Gemini API key from the provided environment map or the process environment.
func ResolveGeminiAPIKey(environment map[string]string) (string, error) {
	if value, exists := lookup(environment, EnvGeminiAPIKey); exists {
		return value, nil
	}
	if value, exists := lookupProcess(EnvGeminiAPIKey); exists {
		return value, nil
	}
	return "", ErrGeminiAPIKeyMissing
}

// ResolvePushToken returns the first non-empty push token observed in the
// provided environment map or the process environment, preferring PAT.
func ResolvePushToken(environment map[string]string) (string, error) {
	for _, key := range pushTokenPreference {
		if value, exists := lookup(environment, key); exists {
			return value, nil
		}
	}
	for _, key := range pushTokenPreference {
		if value, exists := lookupProcess(key); exists {
			return value, nil
		}
	}
	return "", ErrPushTokenMissing
}

// ResolveCredentials resolves every secret the pipeline depends on, failing on the first missing credential.
func ResolveCredentials(environment map[string]string) (Credentials, error) {
	geminiAPIKey, geminiError := ResolveGeminiAPIKey(environment)
	if geminiError != nil {
		return Credentials{}, geminiError
	}
	pushToken, pushError := ResolvePushToken(environment)
	if pushError != nil {
		return Credentials{}, pushError
	}
	return Credentials{GeminiAPIKey: geminiAPIKey, PushToken: pushToken}, nil
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}

func lookupProcess(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
