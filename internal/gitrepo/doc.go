// Package gitrepo manages the target repository working copy: remote URL
// parsing, clone and refresh, staging, committing, and token-authenticated
// pushes executed through the shell executor.
package gitrepo
