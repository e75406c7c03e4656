package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Storage struct {
		Bucket        string
		Region        string
		Endpoint      string
		PublicBaseURL string
		// Namespace prefixes every image folder: <namespace>/offers/<id>.
		Namespace string
	}
	AWS struct {
		Profile string
	}
	Listing struct {
		DefaultLimit     int
		EnforceOwnership bool
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// existing environment variables win over .env entries
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LISTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/listing.db")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "eu-west-3")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("storage.namespace", "vinted")
	v.SetDefault("aws.profile", "")
	v.SetDefault("listing.defaultlimit", 0)
	v.SetDefault("listing.enforceownership", true)
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Listing.DefaultLimit < 0 {
		return Config{}, fmt.Errorf("listing default limit must not be negative")
	}

	return cfg, nil
}
