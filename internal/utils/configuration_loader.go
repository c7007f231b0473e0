package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	pathutils "github.com/log2timeline/devtools/internal/utils/path"
)

const (
	configurationKeySeparatorConstant               = "."
	environmentKeySeparatorConstant                 = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration %s: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to decode configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
)

// ConfigurationLoader resolves devtools settings from embedded defaults, configuration files and the environment.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	embeddedConfiguration     []byte
	embeddedConfigurationType string
	homeExpander              *pathutils.HomeExpander
}

// LoadedConfiguration reports which configuration file, if any, contributed to the result.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader searching the given directories for <configurationName>.<configurationType>.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	homeExpander := pathutils.NewHomeExpander()
	expandedSearchPaths := make([]string, 0, len(searchPaths))
	for _, searchPath := range searchPaths {
		trimmedSearchPath := strings.TrimSpace(searchPath)
		if len(trimmedSearchPath) == 0 {
			continue
		}
		expandedSearchPaths = append(expandedSearchPaths, homeExpander.Expand(trimmedSearchPath))
	}

	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       expandedSearchPaths,
		homeExpander:      homeExpander,
	}
}

// SetEmbeddedConfiguration registers configuration data merged underneath any user configuration file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)
	loader.embeddedConfiguration = append([]byte(nil), configurationData...)
}

// LoadConfiguration decodes the layered configuration into targetConfiguration.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	settings := viper.New()
	settings.SetConfigName(loader.configurationName)
	settings.SetConfigType(loader.configurationType)

	if mergeError := loader.mergeEmbeddedConfiguration(settings); mergeError != nil {
		return LoadedConfiguration{}, mergeError
	}

	for defaultKey, defaultValue := range defaultValues {
		settings.SetDefault(defaultKey, defaultValue)
	}

	loader.bindEnvironment(settings)

	resolvedFilePath := loader.homeExpander.Expand(strings.TrimSpace(configurationFilePath))
	if len(resolvedFilePath) > 0 {
		settings.SetConfigFile(resolvedFilePath)
	} else {
		for _, searchPath := range loader.searchPaths {
			settings.AddConfigPath(searchPath)
		}
	}

	if readError := settings.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, resolvedFilePath, readError)
		}
	}

	if unmarshalError := settings.Unmarshal(targetConfiguration); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{ConfigFileUsed: settings.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) mergeEmbeddedConfiguration(settings *viper.Viper) error {
	if len(loader.embeddedConfiguration) == 0 {
		return nil
	}

	embeddedType := loader.configurationType
	if len(loader.embeddedConfigurationType) > 0 {
		embeddedType = loader.embeddedConfigurationType
	}

	settings.SetConfigType(embeddedType)
	defer settings.SetConfigType(loader.configurationType)

	if mergeError := settings.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
		return fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
	}
	return nil
}

func (loader *ConfigurationLoader) bindEnvironment(settings *viper.Viper) {
	if len(loader.environmentPrefix) > 0 {
		settings.SetEnvPrefix(loader.environmentPrefix)
	}
	settings.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	settings.AutomaticEnv()
}
