package config

import (
	"fmt"

	"rtoken/core"

	configUtil "github.com/fox-one/pkg/config"
)

// EnvPrefix env vars named RTOKEN_* override the yaml file
const EnvPrefix = "RTOKEN"

// Load load config file, the protocol params must validate
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv(EnvPrefix)
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	if _, err := config.Protocol.Params(); err != nil {
		return fmt.Errorf("protocol: %w", err)
	}

	return nil
}
