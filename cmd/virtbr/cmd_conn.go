package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtbr-net/virtbr/pkg/audit"
	"github.com/virtbr-net/virtbr/pkg/bridge"
	"github.com/virtbr-net/virtbr/pkg/util"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name|uuid>",
	Short: "Delete a connection profile",
	Long: `Delete a connection profile by name or UUID.

Deleting a bridge also deletes the port profiles enslaved to it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnOp(mgr, "delete", args[0], dryRun, mgr.Delete)
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <name|uuid>",
	Short: "Activate a connection profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnOp(mgr, "activate", args[0], dryRun, mgr.Activate)
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <name|uuid>",
	Short: "Deactivate a connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnOp(mgr, "deactivate", args[0], dryRun, mgr.Deactivate)
	},
}

// runConnOp runs one profile operation and writes the audit trail.
// Unknown or inactive targets get a courtesy listing of what exists
// before the error is surfaced.
func runConnOp(m *bridge.Manager, op, name string, dry bool, fn func(string, bool) (*bridge.ChangeSet, error)) error {
	start := time.Now()

	cs, err := fn(name, dry)
	if err != nil {
		if errors.Is(err, util.ErrConnectionNotFound) || errors.Is(err, util.ErrConnectionNotActive) {
			fmt.Println("Available connections:")
			listConnections(m, false)
		}
		audit.Log(audit.NewEvent(currentUser(), op).
			WithConnection(name).
			WithError(err).
			WithDuration(time.Since(start)))
		return err
	}

	if dry {
		fmt.Print(cs.Preview())
	}

	audit.Log(audit.NewEvent(currentUser(), op).
		WithConnection(name).
		WithChanges(cs.Changes).
		WithSuccess().
		WithDryRun(dry).
		WithDuration(time.Since(start)))
	return nil
}
