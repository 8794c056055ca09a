package conf

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// Config represents application configuration
type Config struct {
	// Collaborating API
	API APIConfig

	// Local session storage
	Session SessionConfig

	// Feishu counterpart notifications (optional)
	Feishu FeishuConfig

	// Polling configuration (loaded from YAML)
	Polling *PollingConfig

	// Debug HTTP API
	DebugAPI DebugAPIConfig

	// Location used for calendar days
	Location *time.Location

	// Debug mode
	Debug bool

	// pollingErr is the parse error of the polling YAML, reported by Validate
	pollingErr error
}

// APIConfig contains collaborating API configuration
type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// SessionConfig contains session configuration
type SessionConfig struct {
	DBPath    string
	MaxAgeHrs int
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID        string
	AppSecret    string
	NotifyChatID string
}

// Enabled reports whether counterpart notifications go to Feishu
func (c *FeishuConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != "" && c.NotifyChatID != ""
}

// DebugAPIConfig contains debug API configuration
type DebugAPIConfig struct {
	Port int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Session DB path
	sessionDBPath := os.Getenv("SESSION_DB_PATH")
	if sessionDBPath == "" {
		homeDir, _ := os.UserHomeDir()
		sessionDBPath = filepath.Join(homeDir, ".consult-sync", "session.db")
	}

	// Sessions older than this are dropped on startup
	sessionMaxAge := 720
	if val := os.Getenv("SESSION_MAX_AGE_HOURS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			sessionMaxAge = parsed
		}
	}

	apiTimeout := 15
	if val := os.Getenv("API_TIMEOUT_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			apiTimeout = parsed
		}
	}

	debugPort := 8090
	if val := os.Getenv("DEBUG_API_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			debugPort = parsed
		}
	}

	loc := time.Local
	if name := os.Getenv("TIMEZONE"); name != "" {
		if l, err := time.LoadLocation(name); err == nil {
			loc = l
		}
	}

	// Load polling intervals from YAML
	pollingConfig, pollingErr := LoadPollingConfig(os.Getenv("POLLING_CONFIG_PATH"))
	if mode := os.Getenv("UNREAD_MODE"); mode != "" {
		pollingConfig.Unread.Mode = mode
	}

	return &Config{
		API: APIConfig{
			BaseURL: os.Getenv("API_BASE_URL"),
			Token:   os.Getenv("API_TOKEN"),
			Timeout: time.Duration(apiTimeout) * time.Second,
		},
		Session: SessionConfig{
			DBPath:    sessionDBPath,
			MaxAgeHrs: sessionMaxAge,
		},
		Feishu: FeishuConfig{
			AppID:        os.Getenv("FEISHU_APP_ID"),
			AppSecret:    os.Getenv("FEISHU_APP_SECRET"),
			NotifyChatID: os.Getenv("FEISHU_NOTIFY_CHAT_ID"),
		},
		Polling: pollingConfig,
		DebugAPI: DebugAPIConfig{
			Port: debugPort,
		},
		Location: loc,
		Debug:    os.Getenv("DEBUG") == "true",

		pollingErr: pollingErr,
	}
}

// ToSessionConfig converts to domain session configuration
func (c *SessionConfig) ToSessionConfig() domain.SessionConfig {
	return domain.SessionConfig{
		MaxAge: time.Duration(c.MaxAgeHrs) * time.Hour,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return &ConfigError{Field: "API_BASE_URL", Message: "required"}
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Field: "API_BASE_URL", Message: "must be an absolute URL"}
	}
	if c.API.Timeout <= 0 {
		return &ConfigError{Field: "API_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if (c.Feishu.AppID == "") != (c.Feishu.AppSecret == "") {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "both or neither must be set"}
	}
	if c.pollingErr != nil {
		return &ConfigError{Field: "POLLING_CONFIG_PATH", Message: c.pollingErr.Error()}
	}
	if c.Polling != nil {
		if err := c.Polling.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
