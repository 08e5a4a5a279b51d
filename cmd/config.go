package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/blum-farm-cli/internal/adapters/blum"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configDirName = ".bfarm"
	envPrefix     = "BFARM"
)

// loadConfig layers the optional ~/.bfarm/config.toml, a .env file in the working
// directory and BFARM_* environment variables over the defaults.
func loadConfig() (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, configDirName)

	cfg := viper.New()
	cfg.SetConfigName("config")
	cfg.SetConfigType("toml")
	cfg.AddConfigPath(configDir)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	setDefaults(cfg, configDir)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}

func setDefaults(cfg *viper.Viper, configDir string) {
	cfg.SetDefault("accounts.path", filepath.Join(configDir, "accounts.toml"))
	cfg.SetDefault("secrets.dir", filepath.Join(configDir, "secrets"))

	cfg.SetDefault("api.game_url", blum.DefaultGameURL)
	cfg.SetDefault("api.user_url", blum.DefaultUserURL)
	cfg.SetDefault("api.proxy_check_url", blum.DefaultProxyCheckURL)
	cfg.SetDefault("api.timeout", "30s")
	cfg.SetDefault("api.failure_pause", "1s")
	cfg.SetDefault("api.max_rps", 2)

	cfg.SetDefault("proxy.enabled", false)
	cfg.SetDefault("user_agent.randomize", true)

	cfg.SetDefault("startup_delay.enabled", true)
	cfg.SetDefault("startup_delay.min", "5s")
	cfg.SetDefault("startup_delay.max", "60s")

	cfg.SetDefault("referral.ids", []string{})
	cfg.SetDefault("referral.weights", []float64{})

	cfg.SetDefault("log.level", "info")
	cfg.SetDefault("log.json", false)

	cfg.SetDefault("notify.telegram.token", "")
	cfg.SetDefault("notify.telegram.chat_id", 0)
}
