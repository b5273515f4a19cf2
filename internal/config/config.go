package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Backup struct {
		// Dir is the fixed local location for compressed archive artifacts.
		Dir string `mapstructure:"dir"`
		// WorkingRoot is where restored working directories are recreated
		// when the original path is no longer usable.
		WorkingRoot string `mapstructure:"working_root"`

		Mirror struct {
			Enabled   bool   `mapstructure:"enabled"`
			Endpoint  string `mapstructure:"endpoint"`
			Region    string `mapstructure:"region"`
			Bucket    string `mapstructure:"bucket"`
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
		} `mapstructure:"mirror"`
	} `mapstructure:"backup"`

	Monitoring struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"monitoring"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "pack-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "pack_db")
	v.SetDefault("backup.dir", "data/backups")
	v.SetDefault("backup.working_root", "data/customers")
	v.SetDefault("backup.mirror.region", "auto")
	v.SetDefault("monitoring.port", 9090)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	// Override JWT secret from environment if not set
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			log.Fatal("JWT_SECRET not found in environment or config file")
		}
	}

	// Mirror credentials come from the environment when not in the file
	if cfg.Backup.Mirror.Enabled {
		if cfg.Backup.Mirror.AccessKey == "" {
			cfg.Backup.Mirror.AccessKey = os.Getenv("MIRROR_ACCESS_KEY")
		}
		if cfg.Backup.Mirror.SecretKey == "" {
			cfg.Backup.Mirror.SecretKey = os.Getenv("MIRROR_SECRET_KEY")
		}
		if cfg.Backup.Mirror.AccessKey == "" || cfg.Backup.Mirror.SecretKey == "" {
			log.Printf("[Config] Backup mirror enabled but credentials missing, disabling mirror")
			cfg.Backup.Mirror.Enabled = false
		}
	}

	return &cfg
}
