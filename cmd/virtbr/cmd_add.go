package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/virtbr-net/virtbr/pkg/audit"
	"github.com/virtbr-net/virtbr/pkg/bridge"
	"github.com/virtbr-net/virtbr/pkg/util"
)

// addFlags holds the raw flag values of the add command. The interactive
// shell reuses the same set so both frontends parse identically.
type addFlags struct {
	connName          string
	bridgeIfname      string
	slaveInterface    string
	noCloneMAC        bool
	stp               string
	stpPriority       int
	forwardDelay      int
	multicastSnooping string
	vlanFiltering     string
	vlanDefaultPVID   int
}

// registerAddFlags binds the add command's flags to vals.
func registerAddFlags(fs *pflag.FlagSet, vals *addFlags) {
	fs.StringVar(&vals.connName, "conn-name", "", "Bridge connection profile name (or set default via: virtbr settings set conn_name <name>)")
	fs.StringVar(&vals.bridgeIfname, "bridge-ifname", "", "Bridge interface name (or set default via: virtbr settings set bridge_ifname <name>)")
	fs.StringVarP(&vals.slaveInterface, "slave-interface", "i", "", "Physical interface to enslave (auto-selected when omitted)")
	fs.BoolVar(&vals.noCloneMAC, "no-clone-mac", false, "Do not copy the slave's MAC address to the bridge")
	fs.StringVar(&vals.stp, "stp", "yes", "Enable Spanning Tree Protocol (yes/no)")
	fs.IntVar(&vals.stpPriority, "stp-priority", 0, "STP priority (0-65535, lower is preferred)")
	fs.IntVar(&vals.forwardDelay, "fdelay", 0, "STP forward delay in seconds (0-30)")
	fs.StringVar(&vals.multicastSnooping, "multicast-snooping", "yes", "Enable IGMP/MLD snooping (yes/no)")
	fs.StringVar(&vals.vlanFiltering, "vlan-filtering", "no", "Enable VLAN filtering on the bridge (yes/no)")
	fs.IntVar(&vals.vlanDefaultPVID, "vlan-default-pvid", 0, "Default port VLAN ID for the bridge itself (1-4094)")
}

// addOptions converts parsed flag values into planner options. Numeric
// flags only land in the options when they were passed, so NetworkManager
// defaults apply otherwise.
func addOptions(fs *pflag.FlagSet, vals *addFlags, force bool) (bridge.Options, error) {
	stp, err := util.ParseYesNo("stp", vals.stp)
	if err != nil {
		return bridge.Options{}, err
	}
	snooping, err := util.ParseYesNo("multicast-snooping", vals.multicastSnooping)
	if err != nil {
		return bridge.Options{}, err
	}
	filtering, err := util.ParseYesNo("vlan-filtering", vals.vlanFiltering)
	if err != nil {
		return bridge.Options{}, err
	}

	opts := bridge.Options{
		ConnName:          vals.connName,
		BridgeIfname:      vals.bridgeIfname,
		SlaveInterface:    vals.slaveInterface,
		CloneMAC:          !vals.noCloneMAC,
		STP:               stp,
		MulticastSnooping: snooping,
		VLANFiltering:     filtering,
		Force:             force,
	}
	if opts.ConnName == "" {
		opts.ConnName = userSettings.GetConnName()
	}
	if opts.BridgeIfname == "" {
		opts.BridgeIfname = userSettings.GetBridgeIfname()
	}
	if fs.Changed("stp-priority") {
		opts.STPPriority = &vals.stpPriority
	}
	if fs.Changed("fdelay") {
		opts.ForwardDelay = &vals.forwardDelay
	}
	if fs.Changed("vlan-default-pvid") {
		opts.VLANDefaultPVID = &vals.vlanDefaultPVID
	}
	return opts, nil
}

var addVals addFlags

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a bridge connection and enslave an interface",
	Long: `Add a bridge connection profile and a port profile enslaving a
physical interface, then bring the port up.

Without --slave-interface the first activated ethernet interface is
enslaved (falling back to an activated Wi-Fi interface). With
--no-clone-mac the bridge keeps its own MAC instead of the slave's.

Examples:
  virtbr add
  virtbr add -i eth0 --stp no
  virtbr add -f --conn-name c-br1 --bridge-ifname br1
  virtbr add --vlan-filtering yes --vlan-default-pvid 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := addOptions(cmd.Flags(), &addVals, forceMode)
		if err != nil {
			return err
		}
		return runAdd(mgr, opts, dryRun)
	},
}

func init() {
	registerAddFlags(addCmd.Flags(), &addVals)
}

// runAdd plans and applies a bridge creation, ending with the port
// activation that brings the bridge up. Dry-run stops after the preview.
func runAdd(m *bridge.Manager, opts bridge.Options, dry bool) error {
	start := time.Now()
	event := func() *audit.Event {
		return audit.NewEvent(currentUser(), "add").
			WithConnection(opts.ConnName).
			WithInterface(opts.BridgeIfname)
	}

	plan, err := m.Plan(opts)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrBridgeExists):
			showBridges(m, false)
		case errors.Is(err, util.ErrInterfaceNotFound):
			listDevices(m, false)
		}
		audit.Log(event().WithError(err).WithDuration(time.Since(start)))
		return err
	}

	changes := plan.Changes()
	if dry {
		fmt.Print(changes.Preview())
		audit.Log(event().
			WithChanges(changes.Changes).
			WithSuccess().
			WithDryRun(true).
			WithDuration(time.Since(start)))
		return nil
	}

	if err := m.Apply(plan); err != nil {
		audit.Log(event().WithError(err).WithDuration(time.Since(start)))
		return err
	}

	if _, err := m.Activate(plan.PortName, false); err != nil {
		audit.Log(event().WithError(err).WithDuration(time.Since(start)))
		return err
	}

	audit.Log(event().
		WithChanges(changes.Changes).
		WithSuccess().
		WithDuration(time.Since(start)))
	return nil
}
