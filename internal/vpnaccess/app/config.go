package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	VPNContainer string        // Required: name of the OpenVPN Access Server container
	DockerBin    string        // Optional: docker binary to invoke (default: docker)
	SacliPath    string        // Optional: path of sacli inside the container (default: /usr/local/openvpn_as/scripts/sacli)
	SacliTimeout time.Duration // Optional: per-command timeout for management commands (default: 15s)

	SyncIntervalMinutes int  // Optional: scheduled sync period in minutes, 1 to 60 (default: 15)
	SyncHistoryLimit    int  // Optional: in-memory run history cap (default: 20)
	SyncOnStartup       bool // Optional: run a full sync once at boot (default: false)
	SyncStartScheduler  bool // Optional: arm the scheduler at boot (default: true)
	SyncDeleteOrphaned  bool // Optional: scheduled runs delete orphaned external accounts (default: false)

	AdminJWTSecret string // Required: HS256 secret for admin API tokens
	AdminJWTIssuer string // Optional: issuer claim for admin tokens (default: vpn-access-manager)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./vpnaccess.db)
	PepperFile          string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		VPNContainer: getEnvOrDefault("VPN_CONTAINER", "openvpn-as"),
		DockerBin:    getEnvOrDefault("VPN_DOCKER_BIN", ""),
		SacliPath:    getEnvOrDefault("VPN_SACLI_PATH", ""),
		SacliTimeout: getEnvDurationOrDefault("VPN_SACLI_TIMEOUT", 15*time.Second),

		SyncIntervalMinutes: getEnvIntOrDefault("SYNC_INTERVAL_MINUTES", 15),
		SyncHistoryLimit:    getEnvIntOrDefault("SYNC_HISTORY_LIMIT", 20),
		SyncOnStartup:       getEnvBoolOrDefault("SYNC_ON_STARTUP", false),
		SyncStartScheduler:  getEnvBoolOrDefault("SYNC_START_SCHEDULER", true),
		SyncDeleteOrphaned:  getEnvBoolOrDefault("SYNC_DELETE_ORPHANED", false),

		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		AdminJWTIssuer: getEnvOrDefault("ADMIN_JWT_ISSUER", "vpn-access-manager"),

		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "vpnaccess.db"),
		PepperFile:          getEnvOrDefault("PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
