package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewtools/sentiflow/internal/pipeline"
	"github.com/reviewtools/sentiflow/internal/secrets"
)

func TestBuildRunOptionsCarriesVerifyRemoteAccess(testInstance *testing.T) {
	configuration := pipeline.DefaultCommandConfiguration()
	configuration.RemoteURL = "https://github.com/reviewtools/reviews-data.git"
	credentials := secrets.Credentials{GeminiAPIKey: "gemini-key", PushToken: "push-token"}

	runOptions := buildRunOptions(configuration, credentials, true)

	require.Equal(testInstance, configuration.RemoteURL, runOptions.RemoteURL)
	require.Equal(testInstance, configuration.Branch, runOptions.BranchName)
	require.Equal(testInstance, configuration.WorkbookPath, runOptions.WorkbookPath)
	require.Equal(testInstance, credentials.PushToken, runOptions.PushToken)
	require.True(testInstance, runOptions.VerifyRemoteAccess)

	unverifiedOptions := buildRunOptions(configuration, credentials, false)
	require.False(testInstance, unverifiedOptions.VerifyRemoteAccess)
}
