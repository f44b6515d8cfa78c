// Virtbr - Linux Bridge Setup Tool
//
// A CLI tool for wiring up Linux bridges on virtualization hosts through
// NetworkManager's D-Bus API:
//   - One-command bridge creation (bridge profile, port profile, activation)
//   - Slave auto-selection and MAC cloning for seamless LAN presence
//   - Dry-run previews of every mutation
//   - Audit logging of all changes
//   - An interactive shell with live tab completion
//
// Examples:
//
//	virtbr add                             # bridge with defaults (c-mybr0 on mybr0)
//	virtbr add -i eth0 --stp no            # enslave eth0, STP off
//	virtbr add -f --vlan-filtering yes --vlan-default-pvid 10
//	virtbr showb                           # inspect configured bridges
//	virtbr delete c-mybr0                  # remove a bridge and its ports
//	virtbr interactive                     # tab-completed shell
package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/virtbr-net/virtbr/pkg/audit"
	"github.com/virtbr-net/virtbr/pkg/bridge"
	"github.com/virtbr-net/virtbr/pkg/cli"
	"github.com/virtbr-net/virtbr/pkg/nm"
	"github.com/virtbr-net/virtbr/pkg/settings"
	"github.com/virtbr-net/virtbr/pkg/util"
	"github.com/virtbr-net/virtbr/pkg/version"
)

var (
	// Global option flags
	forceMode bool // -f, --force
	dryRun    bool // --dry-run
	debugMode bool // -d, --debug

	// Global state
	userSettings *settings.Settings
	client       *nm.Client
	mgr          *bridge.Manager
)

func main() {
	err := rootCmd.Execute()
	if client != nil {
		client.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "virtbr",
	Short:             "Linux bridge setup for virtualization hosts",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Virtbr manages Linux bridges through NetworkManager.

A single add builds the whole wiring a virtualization host needs: the
bridge profile, the port profile enslaving a physical interface, and
the activation that brings the port up. Every mutating command supports
--dry-run.

  virtbr add -i eth0
  virtbr showb
  virtbr delete c-mybr0`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for certain commands
		if isSettingsOrHelp(cmd) {
			return nil
		}

		// Load user settings
		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		// Set log level: info by default, debug on -d
		if debugMode {
			util.SetLogLevel("debug")
		} else if userSettings.LogLevel != "" {
			if err := util.SetLogLevel(userSettings.LogLevel); err != nil {
				util.Warnf("Ignoring log_level setting: %v", err)
			}
		}

		// Initialize audit logger
		auditLogger, err := audit.NewFileLogger(userSettings.GetAuditLogPath(), audit.RotationConfig{
			MaxSize:    userSettings.GetAuditMaxSize(),
			MaxBackups: userSettings.GetAuditMaxBackups(),
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}

		// Audit queries read the local log only
		if isOffline(cmd) {
			return nil
		}

		client, err = nm.Connect()
		if err != nil {
			return err
		}
		mgr = bridge.NewManager(client)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&forceMode, "force", "f", false, "Replace existing bridges holding the requested names")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Preview changes without touching NetworkManager")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Enable debug logging (very verbose)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(devCmd)
	rootCmd.AddCommand(connCmd)
	rootCmd.AddCommand(showbCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(deactivateCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion("virtbr")
	},
}

func printVersion(tool string) {
	if version.Version == "dev" {
		fmt.Printf("%s dev build (use 'make build' for version info)\n", tool)
	} else {
		fmt.Printf("%s %s (%s)\n", tool, version.Version, version.GitCommit)
	}
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings, help, or version command.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// isOffline checks whether cmd (or any ancestor) runs without NetworkManager.
func isOffline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "audit" {
			return true
		}
	}
	return false
}

// currentUser returns the invoking username for audit events.
func currentUser() string {
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return username
}

func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
