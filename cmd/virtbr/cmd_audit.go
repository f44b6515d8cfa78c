package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtbr-net/virtbr/pkg/audit"
	"github.com/virtbr-net/virtbr/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View the audit log of bridge changes.

Every mutating command is logged with:
  - Timestamp
  - User who ran the command
  - Connection profile affected
  - Operation performed and its per-profile changes
  - Success/failure status

Examples:
  virtbr audit list --connection c-mybr0
  virtbr audit list --last 24h
  virtbr audit list --user alice --failures`,
}

var (
	auditConnection string
	auditInterface  string
	auditOperation  string
	auditUser       string
	auditLast       string
	auditLimit      int
	auditFailures   bool
	auditVerbose    bool
	auditJSON       bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Connection:  auditConnection,
			Interface:   auditInterface,
			Operation:   auditOperation,
			User:        auditUser,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}

		// Parse --last duration
		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if auditJSON {
			return json.NewEncoder(os.Stdout).Encode(events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		if auditVerbose {
			printEventDetails(events)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tUSER\tOPERATION\tCONNECTION\tSTATUS")
		fmt.Fprintln(w, "---------\t----\t---------\t----------\t------")

		for _, event := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Operation,
				event.Connection,
				statusCell(event),
			)
		}
		w.Flush()

		return nil
	},
}

// printEventDetails renders one block per event with the recorded
// per-profile changes indented under it.
func printEventDetails(events []*audit.Event) {
	for i, event := range events {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s  %s  %s  %s  %s\n",
			event.Timestamp.Format("2006-01-02 15:04:05"),
			event.User,
			event.Operation,
			event.Connection,
			statusCell(event),
		)
		if event.Error != "" {
			fmt.Printf("    error: %s\n", event.Error)
		}
		if len(event.Changes) > 0 {
			t := cli.NewTable("TYPE", "PROFILE", "INTERFACE", "DETAIL").WithPrefix("    ")
			for _, c := range event.Changes {
				t.Row(string(c.Type), c.Profile, c.Interface, c.Detail)
			}
			t.Flush()
		}
	}
}

func statusCell(event *audit.Event) string {
	if event.DryRun {
		return yellow("dry-run")
	}
	if !event.Success {
		return red("failed")
	}
	return green("ok")
}

func init() {
	auditListCmd.Flags().StringVar(&auditConnection, "connection", "", "Filter by connection profile")
	auditListCmd.Flags().StringVar(&auditInterface, "interface", "", "Filter by interface")
	auditListCmd.Flags().StringVar(&auditOperation, "operation", "", "Filter by operation (add, delete, activate, deactivate)")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed operations")
	auditListCmd.Flags().BoolVar(&auditVerbose, "verbose", false, "Show per-profile changes for each event")
	auditListCmd.Flags().BoolVar(&auditJSON, "json", false, "JSON output")

	auditCmd.AddCommand(auditListCmd)
}
