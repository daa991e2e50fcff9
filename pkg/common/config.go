package common

import (
	_ "embed"
	"fmt"
	"os"

	yamlparser "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const configPathEnv = "PATLENS_CONFIG_PATH"

//go:embed config.default.yaml
var defaultConfig []byte

// ConfigManager loads the layered application config: embedded defaults
// first, then an optional YAML file named by PATLENS_CONFIG_PATH.
type ConfigManager[T any] struct {
	k      *koanf.Koanf
	config T
}

// NewConfigManager creates a config manager and eagerly loads the config
func NewConfigManager[T any]() (*ConfigManager[T], error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), yamlparser.Parser()); err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}

	if path := os.Getenv(configPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yamlparser.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	cm := &ConfigManager[T]{k: k}
	if err := k.UnmarshalWithConf("", &cm.config, koanf.UnmarshalConf{Tag: "key"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cm, nil
}

// GetConfig returns the loaded configuration
func (cm *ConfigManager[T]) GetConfig() T {
	return cm.config
}

// LoadConfigBytes merges additional raw YAML over the loaded config.
// Used by tests to override individual settings.
func (cm *ConfigManager[T]) LoadConfigBytes(data []byte) error {
	if err := cm.k.Load(rawbytes.Provider(data), yamlparser.Parser()); err != nil {
		return err
	}
	return cm.k.UnmarshalWithConf("", &cm.config, koanf.UnmarshalConf{Tag: "key"})
}
