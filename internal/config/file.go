package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultConfigFile returns the config file path: TT_CONFIG if set, otherwise ~/.tt/config.yaml
func DefaultConfigFile() string {
	if path := os.Getenv("TT_CONFIG"); path != "" {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".tt", "config.yaml")
}

// LoadFromFile overlays the values set in a YAML config file. A missing file
// is not an error; keys absent from the file keep their current value.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) || stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &ConfigError{Field: "config_file", Message: err.Error()}
	}

	if err := v.Unmarshal(c); err != nil {
		return &ConfigError{Field: "config_file", Message: err.Error()}
	}
	return nil
}
