// Package utils provides the configuration loading and structured logging
// primitives shared by every sentiflow command.
package utils
