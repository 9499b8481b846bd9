package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds configuration shared by the daemon and the CLI.
type Config struct {
	// CDP connection settings
	CDPAddress string
	CDPPort    int

	// HTTP daemon settings
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Storage
	DataDir string

	// Browser launch (optional; most setups attach to a running browser)
	LaunchBrowser bool
	StartURL      string
	WindowSize    string

	// Logging
	LogLevel string
	LogFile  string

	// Optional NTFY-style endpoint POSTed after each capture.
	NotifyEndpoint string
}

// Load reads configuration from environment variables and an optional
// .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		CDPAddress:       getEnvOrDefault("TABVAULT_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:          getEnvIntOrDefault("TABVAULT_CDP_PORT", 9222),
		BindAddr:         getEnvOrDefault("TABVAULT_BIND_ADDR", "127.0.0.1:8490"),
		PortCandidates:   getEnvListOrDefault("TABVAULT_BIND_CANDIDATES", []string{"127.0.0.1:8491", "127.0.0.1:8492"}),
		PortAutoFallback: getEnvBoolOrDefault("TABVAULT_BIND_AUTO_FALLBACK", true),
		DataDir:          getEnvOrDefault("TABVAULT_DATA_DIR", defaultDataDir()),
		LaunchBrowser:    getEnvBoolOrDefault("TABVAULT_LAUNCH_BROWSER", false),
		StartURL:         getEnvOrDefault("TABVAULT_START_URL", "about:blank"),
		WindowSize:       getEnvOrDefault("TABVAULT_WINDOW_SIZE", "1920,1080"),
		LogLevel:         strings.ToLower(getEnvOrDefault("TABVAULT_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("TABVAULT_LOG_FILE", "logs/tabvaultd.log"),
		NotifyEndpoint:   getEnvOrDefault("TABVAULT_NOTIFY_ENDPOINT", ""),
	}
	return cfg, nil
}

// CDPURL returns the DevTools HTTP endpoint.
func (c *Config) CDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tabvault"
	}
	return filepath.Join(home, ".tabvault")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
