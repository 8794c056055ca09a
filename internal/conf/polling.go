package conf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	UnreadModeDashboard = "dashboard"
	UnreadModeBadge     = "badge"
)

// PollingConfig contains poll intervals loaded from YAML
type PollingConfig struct {
	Messages      IntervalConfig    `yaml:"messages"`
	Consultations IntervalConfig    `yaml:"consultations"`
	Unread        UnreadConfig      `yaml:"unread"`
	Notifications NotificationsConf `yaml:"notifications"`
}

// IntervalConfig is a single poll interval
type IntervalConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// UnreadConfig has one interval per poll profile
type UnreadConfig struct {
	Mode              string        `yaml:"mode"`
	DashboardInterval time.Duration `yaml:"dashboard_interval"`
	BadgeInterval     time.Duration `yaml:"badge_interval"`
}

// NotificationsConf contains notification feed settings
type NotificationsConf struct {
	Interval time.Duration `yaml:"interval"`
	PageSize int           `yaml:"page_size"`
}

// UnreadInterval returns the interval of the selected profile
func (c *PollingConfig) UnreadInterval() time.Duration {
	if c.Unread.Mode == UnreadModeBadge {
		return c.Unread.BadgeInterval
	}
	return c.Unread.DashboardInterval
}

// Validate validates the polling configuration
func (c *PollingConfig) Validate() error {
	switch c.Unread.Mode {
	case UnreadModeDashboard, UnreadModeBadge:
	default:
		return &ConfigError{Field: "unread.mode", Message: "must be dashboard or badge"}
	}
	if c.Messages.Interval < time.Second || c.Consultations.Interval < time.Second ||
		c.Unread.DashboardInterval < time.Second || c.Unread.BadgeInterval < time.Second ||
		c.Notifications.Interval < time.Second {
		return &ConfigError{Field: "polling", Message: "intervals must be at least 1s"}
	}
	if c.Notifications.PageSize <= 0 {
		return &ConfigError{Field: "notifications.page_size", Message: "must be positive"}
	}
	return nil
}

// LoadPollingConfig loads the polling configuration from a YAML file
func LoadPollingConfig(configPath string) (*PollingConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/polling.yaml",
			"/etc/consult-sync/polling.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "polling.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		if b, err := os.ReadFile(p); err == nil {
			data, loadedPath = b, p
			break
		}
	}

	if data == nil {
		slog.Info("no polling.yaml found, using defaults", "component", "config")
		return DefaultPollingConfig(), nil
	}

	var config PollingConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DefaultPollingConfig(), fmt.Errorf("parse %s: %w", loadedPath, err)
	}
	slog.Info("loaded polling config", "component", "config", "path", loadedPath)

	// Fill in defaults for empty values
	config.fillDefaults()
	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *PollingConfig) fillDefaults() {
	defaults := DefaultPollingConfig()

	if c.Messages.Interval == 0 {
		c.Messages.Interval = defaults.Messages.Interval
	}
	if c.Consultations.Interval == 0 {
		c.Consultations.Interval = defaults.Consultations.Interval
	}
	if c.Unread.Mode == "" {
		c.Unread.Mode = defaults.Unread.Mode
	}
	if c.Unread.DashboardInterval == 0 {
		c.Unread.DashboardInterval = defaults.Unread.DashboardInterval
	}
	if c.Unread.BadgeInterval == 0 {
		c.Unread.BadgeInterval = defaults.Unread.BadgeInterval
	}
	if c.Notifications.Interval == 0 {
		c.Notifications.Interval = defaults.Notifications.Interval
	}
	if c.Notifications.PageSize == 0 {
		c.Notifications.PageSize = defaults.Notifications.PageSize
	}
}

// DefaultPollingConfig returns the default polling configuration
func DefaultPollingConfig() *PollingConfig {
	return &PollingConfig{
		Messages:      IntervalConfig{Interval: 5 * time.Second},
		Consultations: IntervalConfig{Interval: 30 * time.Second},
		Unread: UnreadConfig{
			Mode:              UnreadModeDashboard,
			DashboardInterval: 5 * time.Second,
			BadgeInterval:     15 * time.Second,
		},
		Notifications: NotificationsConf{
			Interval: 30 * time.Second,
			PageSize: 10,
		},
	}
}
