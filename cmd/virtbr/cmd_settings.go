package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/virtbr-net/virtbr/pkg/cli"
	"github.com/virtbr-net/virtbr/pkg/settings"
)

const validSettingKeys = "conn_name, bridge_ifname, log_level, audit_log_path, audit_max_size_mb, audit_max_backups"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.virtbr/settings.json.

Settings provide defaults for the add command and the audit log:
  - conn_name:          Bridge profile name used when --conn-name is not given
  - bridge_ifname:      Bridge interface used when --bridge-ifname is not given
  - log_level:          Default log level (debug, info, warn, error)
  - audit_log_path:     Audit log location
  - audit_max_size_mb:  Audit log size that triggers rotation
  - audit_max_backups:  Rotated audit logs to keep

Examples:
  virtbr settings show
  virtbr settings set conn_name c-lab0
  virtbr settings set bridge_ifname lab0
  virtbr settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE")

		printSetting := func(name, value string) {
			if value == "" {
				value = "(not set)"
			}
			t.Row(name, value)
		}
		printInt := func(name string, value int) {
			if value == 0 {
				printSetting(name, "")
				return
			}
			printSetting(name, strconv.Itoa(value))
		}

		printSetting("conn_name", s.ConnName)
		printSetting("bridge_ifname", s.BridgeIfname)
		printSetting("log_level", s.LogLevel)
		printSetting("audit_log_path", s.AuditLogPath)
		printInt("audit_max_size_mb", s.AuditMaxSizeMB)
		printInt("audit_max_backups", s.AuditMaxBackups)

		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Long: `Set a persistent setting value.

Examples:
  virtbr settings set conn_name c-lab0
  virtbr settings set bridge_ifname lab0
  virtbr settings set log_level debug
  virtbr settings set audit_max_size_mb 50`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setting := args[0]
		value := args[1]

		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}

		switch setting {
		case "conn_name", "conn-name":
			s.ConnName = value
			fmt.Printf("Default connection name set to: %s\n", value)
		case "bridge_ifname", "bridge-ifname":
			s.BridgeIfname = value
			fmt.Printf("Default bridge interface set to: %s\n", value)
		case "log_level", "log-level":
			s.LogLevel = value
			fmt.Printf("Log level set to: %s\n", value)
		case "audit_log_path", "audit-log-path":
			s.AuditLogPath = value
			fmt.Printf("Audit log path set to: %s\n", value)
		case "audit_max_size_mb", "audit-max-size-mb":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return fmt.Errorf("audit_max_size_mb must be a positive integer, got %q", value)
			}
			s.AuditMaxSizeMB = n
			fmt.Printf("Audit log size limit set to: %d MB\n", n)
		case "audit_max_backups", "audit-max-backups":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return fmt.Errorf("audit_max_backups must be a positive integer, got %q", value)
			}
			s.AuditMaxBackups = n
			fmt.Printf("Audit log backups set to: %d\n", n)
		default:
			return fmt.Errorf("unknown setting: %s (valid: %s)", setting, validSettingKeys)
		}

		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}

		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setting := args[0]

		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		var value string
		switch setting {
		case "conn_name", "conn-name":
			value = s.ConnName
		case "bridge_ifname", "bridge-ifname":
			value = s.BridgeIfname
		case "log_level", "log-level":
			value = s.LogLevel
		case "audit_log_path", "audit-log-path":
			value = s.AuditLogPath
		case "audit_max_size_mb", "audit-max-size-mb":
			if s.AuditMaxSizeMB != 0 {
				value = strconv.Itoa(s.AuditMaxSizeMB)
			}
		case "audit_max_backups", "audit-max-backups":
			if s.AuditMaxBackups != 0 {
				value = strconv.Itoa(s.AuditMaxBackups)
			}
		default:
			return fmt.Errorf("unknown setting: %s (valid: %s)", setting, validSettingKeys)
		}

		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		s.Clear()
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
