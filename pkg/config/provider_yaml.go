package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig reads the YAML file over the defaults and validates the result.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := Parse(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*ConfigData, error) {
	config := Default()
	// Panel maps merge into the defaults otherwise.
	config.Panel.Actuators = nil
	config.Panel.Bounds = nil

	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	def := Default()
	if config.Panel.Actuators == nil {
		config.Panel.Actuators = def.Panel.Actuators
	}
	if config.Panel.Bounds == nil {
		config.Panel.Bounds = def.Panel.Bounds
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// GetRESTConfig returns the REST server configuration, or nil when the
// server is not configured.
func (y *YAMLProvider) GetRESTConfig() (*RESTServerData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.REST, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
