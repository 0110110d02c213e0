package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewtools/sentiflow/internal/secrets"
)

const (
	testGeminiKeyValueConstant   = "gemini-key-value"
	testPATValueConstant         = "pat-value"
	testGitHubTokenValueConstant = "github-token-value"
)

func TestResolveGeminiAPIKeyPrefersExplicitEnvironment(testInstance *testing.T) {
	resolvedKey, resolveError := secrets.ResolveGeminiAPIKey(map[string]string{
		secrets.EnvGeminiAPIKey: testGeminiKeyValueConstant,
	})
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, testGeminiKeyValueConstant, resolvedKey)
}

func TestResolveGeminiAPIKeyFallsBackToProcessEnvironment(testInstance *testing.T) {
	testInstance.Setenv(secrets.EnvGeminiAPIKey, testGeminiKeyValueConstant)

	resolvedKey, resolveError := secrets.ResolveGeminiAPIKey(nil)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, testGeminiKeyValueConstant, resolvedKey)
}

func TestResolveGeminiAPIKeyFailsVisiblyWhenMissing(testInstance *testing.T) {
	testInstance.Setenv(secrets.EnvGeminiAPIKey, "")

	_, resolveError := secrets.ResolveGeminiAPIKey(map[string]string{secrets.EnvGeminiAPIKey: "   "})
	require.ErrorIs(testInstance, resolveError, secrets.ErrGeminiAPIKeyMissing)
}

func TestResolvePushTokenHonorsPreferenceOrder(testInstance *testing.T) {
	resolvedToken, resolveError := secrets.ResolvePushToken(map[string]string{
		secrets.EnvGitHubToken:       testGitHubTokenValueConstant,
		secrets.EnvPersonalAccessPAT: testPATValueConstant,
	})
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, testPATValueConstant, resolvedToken)
}

func TestResolvePushTokenFailsVisiblyWhenMissing(testInstance *testing.T) {
	testInstance.Setenv(secrets.EnvPersonalAccessPAT, "")
	testInstance.Setenv(secrets.EnvGitHubToken, "")
	testInstance.Setenv(secrets.EnvGitHubCLIToken, "")

	_, resolveError := secrets.ResolvePushToken(nil)
	require.ErrorIs(testInstance, resolveError, secrets.ErrPushTokenMissing)
}

func TestResolveCredentialsRequiresEverySecret(testInstance *testing.T) {
	testInstance.Setenv(secrets.EnvGeminiAPIKey, "")
	testInstance.Setenv(secrets.EnvPersonalAccessPAT, "")
	testInstance.Setenv(secrets.EnvGitHubToken, "")
	testInstance.Setenv(secrets.EnvGitHubCLIToken, "")

	_, missingGeminiError := secrets.ResolveCredentials(map[string]string{
		secrets.EnvPersonalAccessPAT: testPATValueConstant,
	})
	require.ErrorIs(testInstance, missingGeminiError, secrets.ErrGeminiAPIKeyMissing)

	_, missingTokenError := secrets.ResolveCredentials(map[string]string{
		secrets.EnvGeminiAPIKey: testGeminiKeyValueConstant,
	})
	require.ErrorIs(testInstance, missingTokenError, secrets.ErrPushTokenMissing)

	credentials, resolveError := secrets.ResolveCredentials(map[string]string{
		secrets.EnvGeminiAPIKey:      testGeminiKeyValueConstant,
		secrets.EnvPersonalAccessPAT: testPATValueConstant,
	})
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, testGeminiKeyValueConstant, credentials.GeminiAPIKey)
	require.Equal(testInstance, testPATValueConstant, credentials.PushToken)
}
