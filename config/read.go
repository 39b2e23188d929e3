package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/iequus/iequus_backend/pkg/constants"
)

var GlobalConf *Config

func ReadConfig(configPath string) (*Config, error) {
	// A .env next to the config file seeds the environment for local runs.
	if err := godotenv.Load(filepath.Join(configPath, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// Allow env vars to override config values.
	// e.g. IEQUUS_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	// Read the config file (optional in Docker environments)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if os.Getenv(constants.EnvPrefix+"_DATABASE_HOST") == "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}

// bindEnvKeys registers the keys that are commonly set only through the
// environment, so Unmarshal sees them without a config file.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"database.host", "database.port", "database.user", "database.password", "database.dbname", "database.sslmode",
		"casbin_database.host", "casbin_database.port", "casbin_database.user", "casbin_database.password",
		"casbin_database.dbname", "casbin_database.sslmode",
		"redis.addr", "redis.password",
		"server.port", "server.environment", "server.public_url",
		"authentication.jwt.secret", "authentication.jwt.issuer",
		"media.backend", "media.root",
		"s3.endpoint", "s3.region", "s3.access_key_id", "s3.secret_access_key", "s3.bucket", "s3.public_url",
		"prediction.base_url",
		"email.smtp.host", "email.smtp.username", "email.smtp.password",
	} {
		_ = v.BindEnv(key)
	}
}
