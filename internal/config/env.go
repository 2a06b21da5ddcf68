// Package config provides centralized configuration management.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultHammerURL is where the automation daemon listens by default.
const DefaultHammerURL = "http://127.0.0.1:7733"

// DefaultTimeout bounds every call to the automation daemon.
const DefaultTimeout = 5 * time.Second

// DefaultDevToolsAddr is where Chrome listens when started with
// --remote-debugging-port=9222.
const DefaultDevToolsAddr = "127.0.0.1:9222"

// SaydoEnv holds all saydo environment variables.
type SaydoEnv struct {
	// HammerURL is the automation daemon base URL (HAMMER_URL)
	HammerURL string

	// TrackedChatsPath is the whitelist file (TRACKED_CHATS_PATH)
	TrackedChatsPath string

	// ConfigPath is the driver config file (SAYDO_CONFIG)
	ConfigPath string

	// DisableWhitelist lets unknown targets through verbatim
	// (SAYDO_DISABLE_WHITELIST, or legacy DISABLE_WHITELIST)
	DisableWhitelist bool

	// Timeout bounds each daemon request (SAYDO_TIMEOUT, seconds or Go duration)
	Timeout time.Duration

	// Transcriber is an external speech-to-text command for listen mode (SAYDO_TRANSCRIBER)
	Transcriber string

	// DevToolsAddr is Chrome's remote debugging endpoint for tab listing (SAYDO_DEVTOOLS)
	DevToolsAddr string

	// Home overrides the data directory (SAYDO_HOME)
	Home string
}

var (
	env     *SaydoEnv
	envOnce sync.Once
)

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Env() *SaydoEnv {
	envOnce.Do(func() {
		env = &SaydoEnv{
			HammerURL:        strings.TrimRight(getEnvDefault("HAMMER_URL", DefaultHammerURL), "/"),
			TrackedChatsPath: getEnvDefault("TRACKED_CHATS_PATH", "tracked_chats.json"),
			ConfigPath:       getEnvDefault("SAYDO_CONFIG", filepath.Join("config", "config.json")),
			DisableWhitelist: isTruthy(os.Getenv("SAYDO_DISABLE_WHITELIST")) || isTruthy(os.Getenv("DISABLE_WHITELIST")),
			Timeout:          parseTimeout(os.Getenv("SAYDO_TIMEOUT")),
			Transcriber:      os.Getenv("SAYDO_TRANSCRIBER"),
			DevToolsAddr:     getEnvDefault("SAYDO_DEVTOOLS", DefaultDevToolsAddr),
			Home:             os.Getenv("SAYDO_HOME"),
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
	pathsOnce = sync.Once{}
	paths = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// parseTimeout accepts plain seconds ("5") or a Go duration ("1500ms").
func parseTimeout(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultTimeout
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// Paths holds standard saydo directory paths.
type Paths struct {
	// Home is the saydo home directory (~/.saydo)
	Home string

	// Data is the data directory (~/.saydo/data)
	Data string

	// HistoryDB is the command history database (~/.saydo/data/history.db)
	HistoryDB string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home := Env().Home
		if home == "" {
			userHome, err := os.UserHomeDir()
			if err != nil {
				userHome = "."
			}
			home = filepath.Join(userHome, ".saydo")
		}

		data := filepath.Join(home, "data")
		paths = &Paths{
			Home:      home,
			Data:      data,
			HistoryDB: filepath.Join(data, "history.db"),
		}
	})
	return paths
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
