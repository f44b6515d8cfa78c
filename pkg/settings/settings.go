// Package settings manages persistent user settings for the virtbr CLI.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Built-in defaults applied when neither a flag nor a setting is present
const (
	DefaultConnName     = "c-mybr0"
	DefaultBridgeIfname = "mybr0"
)

// Audit log rotation defaults
const (
	defaultAuditMaxSizeMB  = 10
	defaultAuditMaxBackups = 10
)

// Settings holds persistent user preferences
type Settings struct {
	// ConnName is the bridge connection-profile name used when
	// --conn-name is not specified
	ConnName string `json:"conn_name,omitempty"`

	// BridgeIfname is the bridge interface name used when
	// --bridge-ifname is not specified
	BridgeIfname string `json:"bridge_ifname,omitempty"`

	// LogLevel overrides the default info log level
	LogLevel string `json:"log_level,omitempty"`

	// AuditLogPath overrides the default audit log location
	AuditLogPath string `json:"audit_log_path,omitempty"`

	// AuditMaxSizeMB is the audit log size that triggers rotation
	AuditMaxSizeMB int `json:"audit_max_size_mb,omitempty"`

	// AuditMaxBackups is the number of rotated audit logs to keep
	AuditMaxBackups int `json:"audit_max_backups,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "virtbr_settings.json"
	}
	return filepath.Join(home, ".virtbr", "settings.json")
}

// DefaultAuditLogPath returns the default path for the audit log
func DefaultAuditLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "virtbr_audit.log"
	}
	return filepath.Join(home, ".virtbr", "audit.log")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetConnName returns the connection-profile name (with fallback)
func (s *Settings) GetConnName() string {
	if s.ConnName != "" {
		return s.ConnName
	}
	return DefaultConnName
}

// GetBridgeIfname returns the bridge interface name (with fallback)
func (s *Settings) GetBridgeIfname() string {
	if s.BridgeIfname != "" {
		return s.BridgeIfname
	}
	return DefaultBridgeIfname
}

// GetAuditLogPath returns the audit log path (with fallback)
func (s *Settings) GetAuditLogPath() string {
	if s.AuditLogPath != "" {
		return s.AuditLogPath
	}
	return DefaultAuditLogPath()
}

// GetAuditMaxSize returns the audit rotation threshold in bytes (with fallback)
func (s *Settings) GetAuditMaxSize() int64 {
	mb := s.AuditMaxSizeMB
	if mb <= 0 {
		mb = defaultAuditMaxSizeMB
	}
	return int64(mb) * 1024 * 1024
}

// GetAuditMaxBackups returns the number of rotated audit logs to keep (with fallback)
func (s *Settings) GetAuditMaxBackups() int {
	if s.AuditMaxBackups <= 0 {
		return defaultAuditMaxBackups
	}
	return s.AuditMaxBackups
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
