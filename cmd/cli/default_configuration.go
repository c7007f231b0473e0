package cli

import _ "embed"

//go:embed default_config.yaml
var defaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the bundled defaults and their
// configuration type. The defaults sit underneath any user configuration file.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), defaultConfigurationContent...), configurationTypeConstant
}
