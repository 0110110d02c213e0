package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	httpsProtocolPrefixConstant         = "https://"
	gitUserPrefixConstant               = "git@"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
	httpsRemoteTemplateConstant         = "https://%s/%s/%s.git"
	authenticatedRemoteTemplateConstant = "https://%s:%s@%s/%s/%s.git"
	tokenUserNameConstant               = "x-access-token"
	redactedCredentialConstant          = "***"
	credentialSchemeDelimiterConstant   = "://"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	if strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant) {
		return parseSSHRemote(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	}
	if strings.HasPrefix(trimmedRemote, gitUserPrefixConstant) {
		return parseSSHRemote(trimmedRemote)
	}
	if strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant) {
		return parseHTTPSRemote(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

// CanonicalHTTPSURL renders the remote as an unauthenticated HTTPS clone URL.
func (remote RemoteURL) CanonicalHTTPSURL() string {
	return fmt.Sprintf(httpsRemoteTemplateConstant, remote.Host, remote.Owner, remote.Repository)
}

// AuthenticatedPushURL renders the remote as an HTTPS URL carrying the supplied token as a basic-auth credential.
func (remote RemoteURL) AuthenticatedPushURL(token string) string {
	return fmt.Sprintf(authenticatedRemoteTemplateConstant, tokenUserNameConstant, token, remote.Host, remote.Owner, remote.Repository)
}

// RedactCredentials removes any embedded basic-auth credential from a remote URL for safe logging.
func RedactCredentials(remote string) string {
	schemeIndex := strings.Index(remote, credentialSchemeDelimiterConstant)
	if schemeIndex == -1 {
		return remote
	}
	remainder := remote[schemeIndex+len(credentialSchemeDelimiterConstant):]
	credentialIndex := strings.Index(remainder, sshUserDelimiterConstant)
	if credentialIndex == -1 {
		return remote
	}
	return remote[:schemeIndex+len(credentialSchemeDelimiterConstant)] + redactedCredentialConstant + remainder[credentialIndex:]
}

func parseSSHRemote(remote string) (RemoteURL, error) {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	hostAndPath := remote[userSplitIndex+1:]
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	var host string
	var path string
	if pathSplitIndex == -1 {
		slashIndex := strings.Index(hostAndPath, pathSeparatorConstant)
		if slashIndex == -1 {
			return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
		}
		host = hostAndPath[:slashIndex]
		path = hostAndPath[slashIndex+1:]
	} else {
		host = hostAndPath[:pathSplitIndex]
		path = hostAndPath[pathSplitIndex+1:]
	}
	owner, repository, parseError := splitOwnerAndRepository(path)
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHTTPSRemote(remote string) (RemoteURL, error) {
	pathComponents := strings.Split(remote, pathSeparatorConstant)
	if len(pathComponents) < 3 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	host := pathComponents[0]
	owner := pathComponents[1]
	repository, parseError := normalizeRepositoryName(strings.Join(pathComponents[2:], pathSeparatorConstant))
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: host, Owner: owner, Repository: repository}, nil
}

func splitOwnerAndRepository(path string) (string, string, error) {
	pathComponents := strings.Split(path, pathSeparatorConstant)
	if len(pathComponents) < 2 {
		return "", "", RemoteURLParseError{Input: path, Message: invalidRemoteURLMessageConstant}
	}
	owner := strings.TrimSpace(pathComponents[0])
	repository, parseError := normalizeRepositoryName(strings.Join(pathComponents[1:], pathSeparatorConstant))
	if parseError != nil {
		return "", "", parseError
	}
	if len(owner) == 0 {
		return "", "", RemoteURLParseError{Input: path, Message: invalidRemoteURLMessageConstant}
	}
	return owner, repository, nil
}

func normalizeRepositoryName(rawRepositoryName string) (string, error) {
	trimmedRepositoryName := strings.TrimSuffix(strings.TrimSpace(rawRepositoryName), gitSuffixConstant)
	if len(trimmedRepositoryName) == 0 {
		return "", RemoteURLParseError{Input: rawRepositoryName, Message: invalidRemoteURLMessageConstant}
	}
	return trimmedRepositoryName, nil
}
