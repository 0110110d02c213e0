// Package preflight validates credentials, configuration, and repository
// access before a pipeline run is attempted.
package preflight
