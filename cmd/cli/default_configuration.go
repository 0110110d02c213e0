package cli

import (
	_ "embed"
	"slices"
)

//go:embed default_config.yaml
var embeddedPipelineDefaults []byte

// EmbeddedDefaultConfiguration returns a copy of the baked-in pipeline
// defaults together with the viper configuration type they are encoded in.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return slices.Clone(embeddedPipelineDefaults), configurationTypeConstant
}
