// Package config exposes the taskpanel runtime configuration, sourced from the
// process environment and an optional .env file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

const (
	defaultPort             = 3000
	defaultAuditRetention   = 90
	defaultLoginRateLimit   = 20
	defaultSessionMaxAgeMin = 0
)

// LoadEnv reads a .env file from the working directory into the environment.
// Variables that are already set win over the file. A missing file is not an error.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("DEBUG") == "true"
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetListen() string {
	return os.Getenv("LISTEN")
}

func GetPort() (int, error) {
	return getInt("PORT", defaultPort)
}

// GetSessionSecret returns the key used to sign session cookies.
func GetSessionSecret() string {
	return os.Getenv("SESSION_SECRET")
}

// GetSessionMaxAge returns the session lifetime in minutes. Zero keeps the
// cookie for the browser session only.
func GetSessionMaxAge() (int, error) {
	return getInt("SESSION_MAX_AGE", defaultSessionMaxAgeMin)
}

func GetRedisAddr() string {
	return os.Getenv("REDIS_ADDR")
}

func GetRedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

func GetAuditRetentionDays() (int, error) {
	return getInt("AUDIT_RETENTION_DAYS", defaultAuditRetention)
}

// GetLoginRateLimit returns how many signup/login attempts a client may make per minute.
func GetLoginRateLimit() (int, error) {
	return getInt("LOGIN_RATE_LIMIT", defaultLoginRateLimit)
}

// GetTrustedProxies returns the comma-separated TRUSTED_PROXIES addresses or CIDRs
// whose forwarding headers are believed. Empty means the peer address is always
// the client address.
func GetTrustedProxies() []string {
	var proxies []string
	for _, p := range strings.Split(os.Getenv("TRUSTED_PROXIES"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

// GoogleOAuthConfig holds the OAuth client registration for Google sign-in.
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Enabled reports whether Google sign-in has been configured.
func (c GoogleOAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func GetGoogleOAuth() GoogleOAuthConfig {
	callback := os.Getenv("GOOGLE_CALLBACK_URL")
	if callback == "" {
		port, _ := GetPort()
		callback = fmt.Sprintf("http://localhost:%d/auth/google/callback", port)
	}
	return GoogleOAuthConfig{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		CallbackURL:  callback,
	}
}

func getInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
