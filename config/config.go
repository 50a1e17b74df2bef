package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

// MaxLoadBatchSize keeps an ITEMS batch (10 columns) under PostgreSQL's
// 65535 bind-parameter limit.
const MaxLoadBatchSize = 65535 / 10

// Load targets for the optional database step.
const (
	LoadNone     = "none"
	LoadPostgres = "postgres"
	LoadSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	OutputDir   string `yaml:"outputDir"`
	DatSuffix   string `yaml:"datSuffix"`
	InputSuffix string `yaml:"inputSuffix"`
	Strict      bool   `yaml:"strict"`
	LogLevel    string `yaml:"logLevel"`

	LoadTarget    string `yaml:"loadTarget"`
	LoadBatchSize int    `yaml:"loadBatchSize"`
	MaxRetries    int    `yaml:"maxRetries"`
	SQLitePath    string `yaml:"sqlitePath"`

	PostgresHost     string `yaml:"postgresHost"`
	PostgresPort     string `yaml:"postgresPort"`
	PostgresUser     string `yaml:"postgresUser"`
	PostgresPassword string `yaml:"postgresPassword"`
	PostgresDB       string `yaml:"postgresDB"`
	PostgresSSLMode  string `yaml:"postgresSSLMode"`
}

// Load reads the .env file, the environment and the optional YAML file named
// by AUCTION_ETL_CONFIG, in that order of increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := FromEnv()

	if path := os.Getenv("AUCTION_ETL_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables and defaults only.
func FromEnv() *Config {
	return &Config{
		OutputDir:   getEnv("OUTPUT_DIR", "."),
		DatSuffix:   getEnv("DAT_SUFFIX", ".dat"),
		InputSuffix: getEnv("INPUT_SUFFIX", ".json"),
		Strict:      getEnvBool("STRICT", false),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		LoadTarget:    strings.ToLower(getEnv("LOAD_TARGET", LoadNone)),
		LoadBatchSize: getEnvInt("LOAD_BATCH_SIZE", 500),
		MaxRetries:    getEnvInt("MAX_RETRIES", 3),
		SQLitePath:    getEnv("SQLITE_PATH", "./auctions.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "auction"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "auction"),
		PostgresDB:       getEnv("POSTGRES_DB", "auctions"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// overlayFile applies the non-zero values of a YAML file on top of c.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	return c.overlay(data)
}

func (c *Config) overlay(data []byte) error {
	var fc Config
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	// Booleans need presence, not zero-value, to override the environment.
	var flags struct {
		Strict *bool `yaml:"strict"`
	}
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}

	setStr(&c.OutputDir, fc.OutputDir)
	setStr(&c.DatSuffix, fc.DatSuffix)
	setStr(&c.InputSuffix, fc.InputSuffix)
	setStr(&c.LogLevel, fc.LogLevel)
	setStr(&c.LoadTarget, strings.ToLower(fc.LoadTarget))
	setStr(&c.SQLitePath, fc.SQLitePath)
	setStr(&c.PostgresHost, fc.PostgresHost)
	setStr(&c.PostgresPort, fc.PostgresPort)
	setStr(&c.PostgresUser, fc.PostgresUser)
	setStr(&c.PostgresPassword, fc.PostgresPassword)
	setStr(&c.PostgresDB, fc.PostgresDB)
	setStr(&c.PostgresSSLMode, fc.PostgresSSLMode)
	if flags.Strict != nil {
		c.Strict = *flags.Strict
	}
	if fc.LoadBatchSize > 0 {
		c.LoadBatchSize = fc.LoadBatchSize
	}
	if fc.MaxRetries > 0 {
		c.MaxRetries = fc.MaxRetries
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.LoadTarget {
	case LoadNone, LoadPostgres, LoadSQLite:
	default:
		return fmt.Errorf("config: unknown LOAD_TARGET %q (want none, postgres or sqlite)", c.LoadTarget)
	}
	if c.LoadBatchSize < 1 || c.LoadBatchSize > MaxLoadBatchSize {
		return fmt.Errorf("config: LOAD_BATCH_SIZE must be between 1 and %d, got %d", MaxLoadBatchSize, c.LoadBatchSize)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("config: OUTPUT_DIR must not be empty")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
