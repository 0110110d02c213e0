package gitrepo_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewtools/sentiflow/internal/gitrepo"
)

const (
	testRemoteSubtestTemplateConstant = "%d_%s"
	testRemoteHostConstant            = "github.com"
	testRemoteOwnerConstant           = "reviewtools"
	testRemoteRepositoryConstant      = "reviews-data"
	testRemoteTokenConstant           = "ghp_exampletoken"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectError    bool
		expectedResult gitrepo.RemoteURL
	}{
		{
			name:  "https_remote",
			input: "https://github.com/reviewtools/reviews-data.git",
			expectedResult: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolHTTPS,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
		},
		{
			name:  "https_remote_without_suffix",
			input: "https://github.com/reviewtools/reviews-data",
			expectedResult: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolHTTPS,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
		},
		{
			name:  "scp_style_ssh_remote",
			input: "git@github.com:reviewtools/reviews-data.git",
			expectedResult: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
		},
		{
			name:  "ssh_protocol_remote",
			input: "ssh://git@github.com/reviewtools/reviews-data.git",
			expectedResult: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       testRemoteHostConstant,
				Owner:      testRemoteOwnerConstant,
				Repository: testRemoteRepositoryConstant,
			},
		},
		{
			name:        "empty_remote",
			input:       "   ",
			expectError: true,
		},
		{
			name:        "unsupported_protocol",
			input:       "ftp://github.com/reviewtools/reviews-data.git",
			expectError: true,
		},
		{
			name:        "missing_repository_segment",
			input:       "https://github.com/reviewtools",
			expectError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testRemoteSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			parsedRemote, parseError := gitrepo.ParseRemoteURL(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedResult, parsedRemote)
		})
	}
}

func TestAuthenticatedPushURLEmbedsToken(testInstance *testing.T) {
	remote := gitrepo.RemoteURL{
		Protocol:   gitrepo.RemoteProtocolHTTPS,
		Host:       testRemoteHostConstant,
		Owner:      testRemoteOwnerConstant,
		Repository: testRemoteRepositoryConstant,
	}

	pushURL := remote.AuthenticatedPushURL(testRemoteTokenConstant)
	require.Contains(testInstance, pushURL, testRemoteTokenConstant)
	require.Contains(testInstance, pushURL, testRemoteOwnerConstant)

	redactedURL := gitrepo.RedactCredentials(pushURL)
	require.NotContains(testInstance, redactedURL, testRemoteTokenConstant)
	require.Contains(testInstance, redactedURL, testRemoteRepositoryConstant)
}

func TestRedactCredentialsLeavesPlainURLs(testInstance *testing.T) {
	remote := gitrepo.RemoteURL{
		Protocol:   gitrepo.RemoteProtocolHTTPS,
		Host:       testRemoteHostConstant,
		Owner:      testRemoteOwnerConstant,
		Repository: testRemoteRepositoryConstant,
	}

	canonicalURL := remote.CanonicalHTTPSURL()
	require.Equal(testInstance, canonicalURL, gitrepo.RedactCredentials(canonicalURL))
}
