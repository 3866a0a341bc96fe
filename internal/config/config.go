package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/utils"
)

// Config holds settings shared by the server and the client commands.
type Config struct {
	Database      string
	ListenAddr    string
	ServerURL     string
	APIToken      string
	RedisURL      string
	Timezone      string
	GeminiAPIKey  string
	GenAIModel    string
	GenerateRate  float64
	GenerateBurst int
	AsyncGenerate bool
}

// Load reads .env files (when present) and then the process environment.
// Variables already set in the environment are not overridden by .env.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	rate, err := strconv.ParseFloat(getEnvOrDefault("TRACKED_GENERATE_RPS", strconv.FormatFloat(constants.DefaultGenerateRate, 'f', -1, 64)), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TRACKED_GENERATE_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnvOrDefault("TRACKED_GENERATE_BURST", strconv.Itoa(constants.DefaultGenerateBurst)))
	if err != nil {
		return nil, fmt.Errorf("invalid TRACKED_GENERATE_BURST: %w", err)
	}
	async, err := strconv.ParseBool(getEnvOrDefault("TRACKED_ASYNC_GENERATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRACKED_ASYNC_GENERATE: %w", err)
	}

	cfg := &Config{
		Database:      getEnvOrDefault("TRACKED_DB", constants.DefaultConfigPath),
		ListenAddr:    getEnvOrDefault("TRACKED_LISTEN", constants.DefaultListenAddr),
		ServerURL:     strings.TrimRight(getEnvOrDefault("TRACKED_SERVER", constants.DefaultServerURL), "/"),
		APIToken:      os.Getenv("TRACKED_API_TOKEN"),
		RedisURL:      os.Getenv("TRACKED_REDIS_URL"),
		Timezone:      getEnvOrDefault("TRACKED_TIMEZONE", "Local"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GenAIModel:    getEnvOrDefault("TRACKED_GENAI_MODEL", constants.DefaultGenAIModel),
		GenerateRate:  rate,
		GenerateBurst: burst,
		AsyncGenerate: async,
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.ListenAddr, err)
	}
	if c.GenerateRate <= 0 {
		return fmt.Errorf("generate rate must be positive, got %v", c.GenerateRate)
	}
	if c.GenerateBurst < 1 {
		return fmt.Errorf("generate burst must be at least 1, got %d", c.GenerateBurst)
	}
	if c.ServerURL == "" {
		return errors.New("server URL cannot be empty")
	}
	return nil
}

// IsPostgres reports whether the configured database is a PostgreSQL URL.
func (c *Config) IsPostgres() bool {
	return IsPostgresDSN(c.Database)
}

// IsPostgresDSN reports whether dsn is a PostgreSQL connection URL.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// ExpandPath expands a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ConfigDir returns the directory used for logs and backups.
func (c *Config) ConfigDir() string {
	if c.IsPostgres() {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "."
		}
		return filepath.Join(dir, constants.AppName)
	}
	path, err := ExpandPath(c.Database)
	if err != nil {
		return "."
	}
	return filepath.Dir(path)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
