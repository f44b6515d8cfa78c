package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/virtbr-net/virtbr/pkg/bridge"
	"github.com/virtbr-net/virtbr/pkg/cli"
	"github.com/virtbr-net/virtbr/pkg/nm"
)

var devJSON bool

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Show all network devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDevices(mgr, devJSON)
	},
}

var connJSON bool

var connCmd = &cobra.Command{
	Use:   "conn",
	Short: "Show all connection profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listConnections(mgr, connJSON)
	},
}

var showbJSON bool

var showbCmd = &cobra.Command{
	Use:   "showb",
	Short: "Show all configured bridges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showBridges(mgr, showbJSON)
	},
}

func init() {
	devCmd.Flags().BoolVar(&devJSON, "json", false, "JSON output")
	connCmd.Flags().BoolVar(&connJSON, "json", false, "JSON output")
	showbCmd.Flags().BoolVar(&showbJSON, "json", false, "JSON output")
}

// deviceView is the scripting shape of one device row.
type deviceView struct {
	Interface   string `json:"interface"`
	Type        string `json:"type"`
	MAC         string `json:"mac,omitempty"`
	State       string `json:"state"`
	Connection  string `json:"connection,omitempty"`
	Autoconnect bool   `json:"autoconnect"`
}

func listDevices(m *bridge.Manager, asJSON bool) error {
	devices, err := m.Devices()
	if err != nil {
		return err
	}

	if asJSON {
		views := make([]deviceView, 0, len(devices))
		for _, d := range devices {
			views = append(views, deviceView{
				Interface:   d.Interface,
				Type:        d.Type.String(),
				MAC:         d.MAC,
				State:       d.State.String(),
				Connection:  d.Connection,
				Autoconnect: d.Autoconnect,
			})
		}
		return json.NewEncoder(os.Stdout).Encode(views)
	}

	t := cli.NewTable("INTERFACE", "TYPE", "MAC ADDRESS", "STATE", "CONNECTION", "AUTOCONNECT")
	for _, d := range devices {
		t.Row(d.Interface, d.Type.String(), dash(d.MAC), stateCell(d.State), dash(d.Connection), yesNo(d.Autoconnect))
	}
	t.Flush()
	return nil
}

// connView is the scripting shape of one connection row.
type connView struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Interface string `json:"interface,omitempty"`
	UUID      string `json:"uuid"`
}

func listConnections(m *bridge.Manager, asJSON bool) error {
	conns, err := m.Connections()
	if err != nil {
		return err
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })

	if asJSON {
		views := make([]connView, 0, len(conns))
		for _, c := range conns {
			views = append(views, connView{Name: c.ID, Type: c.Type, Interface: c.Interface, UUID: c.UUID})
		}
		return json.NewEncoder(os.Stdout).Encode(views)
	}

	t := cli.NewTable("NAME", "TYPE", "INTERFACE", "UUID")
	for _, c := range conns {
		t.Row(c.ID, c.Type, dash(c.Interface), c.UUID)
	}
	t.Flush()
	return nil
}

// bridgeView is the display and scripting shape of one bridge: the stored
// profile joined with its ports, with the live IPv4 state overlaid when
// the bridge interface is up.
type bridgeView struct {
	Name              string     `json:"name"`
	Interface         string     `json:"interface"`
	UUID              string     `json:"uuid"`
	Ports             []portView `json:"ports,omitempty"`
	STP               bool       `json:"stp"`
	STPPriority       *int       `json:"stp_priority,omitempty"`
	ForwardDelay      *int       `json:"forward_delay,omitempty"`
	MulticastSnooping bool       `json:"multicast_snooping"`
	VLANFiltering     bool       `json:"vlan_filtering"`
	VLANDefaultPVID   *int       `json:"vlan_default_pvid,omitempty"`
	MACAddress        string     `json:"mac_address,omitempty"`
	IPv4              ip4View    `json:"ipv4"`
}

type portView struct {
	Interface string `json:"interface"`
	Profile   string `json:"profile"`
}

type ip4View struct {
	Method      string   `json:"method"`
	Addresses   []string `json:"addresses,omitempty"`
	Gateway     string   `json:"gateway,omitempty"`
	Nameservers []string `json:"nameservers,omitempty"`
}

// newBridgeView joins a bridge with the live IPv4 state of its interface.
// An auto-method bridge then shows its actual leased address instead of
// the empty static configuration.
func newBridgeView(b bridge.Bridge, live *nm.IP4Config) bridgeView {
	v := bridgeView{
		Name:              b.Connection.ID,
		Interface:         b.Connection.Interface,
		UUID:              b.Connection.UUID,
		STP:               b.Settings.STP,
		STPPriority:       b.Settings.Priority,
		ForwardDelay:      b.Settings.ForwardDelay,
		MulticastSnooping: b.Settings.MulticastSnooping,
		VLANFiltering:     b.Settings.VLANFiltering,
		VLANDefaultPVID:   b.Settings.VLANDefaultPVID,
		MACAddress:        b.Settings.MACAddress,
		IPv4: ip4View{
			Method:      b.IP4.Method,
			Addresses:   b.IP4.Addresses,
			Gateway:     b.IP4.Gateway,
			Nameservers: b.IP4.Nameservers,
		},
	}
	for _, p := range b.Ports {
		v.Ports = append(v.Ports, portView{Interface: p.Interface, Profile: p.Profile})
	}
	if live != nil {
		v.IPv4.Addresses = live.Addresses
		v.IPv4.Gateway = live.Gateway
		v.IPv4.Nameservers = live.Nameservers
	}
	return v
}

func showBridges(m *bridge.Manager, asJSON bool) error {
	bridges, err := m.Bridges()
	if err != nil {
		return err
	}

	views := make([]bridgeView, 0, len(bridges))
	for _, b := range bridges {
		views = append(views, newBridgeView(b, m.ActiveIP4(b.Connection.Interface)))
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(views)
	}

	if len(views) == 0 {
		fmt.Println("No existing bridge connections found.")
		return nil
	}

	fmt.Printf("--- Found %d Bridge(s) ---\n", len(views))
	for i, v := range views {
		writeBridgeTree(os.Stdout, v)
		if i < len(views)-1 {
			fmt.Println()
		}
	}
	return nil
}

func writeBridgeTree(w io.Writer, v bridgeView) {
	fmt.Fprintf(w, "  Bridge Profile: %s\n", v.Name)
	fmt.Fprintf(w, "  |- Interface:    %s\n", v.Interface)
	fmt.Fprintf(w, "  |- UUID:         %s\n", v.UUID)
	if len(v.Ports) > 0 {
		fmt.Fprintln(w, "  |- Slave(s):")
		for _, p := range v.Ports {
			fmt.Fprintf(w, "  |  |- %s (Profile: %s)\n", p.Interface, p.Profile)
		}
	} else {
		fmt.Fprintln(w, "  |- Slave:       (None)")
	}
	fmt.Fprintln(w, "  |- Bridge Settings:")
	fmt.Fprintf(w, "  |  |- STP Enabled:   %s\n", yesNo(v.STP))
	fmt.Fprintf(w, "  |  |- STP Priority:  %s\n", intCell(v.STPPriority))
	fmt.Fprintf(w, "  |  |- Forward Delay: %s\n", intCell(v.ForwardDelay))
	fmt.Fprintf(w, "  |  |- IGMP snooping: %s\n", yesNo(v.MulticastSnooping))
	fmt.Fprintf(w, "  |  |- VLAN Filtering: %s\n", yesNo(v.VLANFiltering))
	if v.VLANFiltering {
		fmt.Fprintf(w, "  |   - vlan-default-pvid:    %s\n", intCell(v.VLANDefaultPVID))
	}
	mac := v.MACAddress
	if mac == "" {
		mac = "Not set"
	}
	fmt.Fprintf(w, "  |   - MAC:    %s\n", mac)
	fmt.Fprintf(w, "  |- IPv4 Config:  (%s)\n", v.IPv4.Method)
	fmt.Fprintf(w, "  |  |- Address: %s\n", joinCell(v.IPv4.Addresses))
	fmt.Fprintf(w, "  |  |- Gateway: %s\n", textCell(v.IPv4.Gateway))
	fmt.Fprintf(w, "  |   - DNS:     %s\n", joinCell(v.IPv4.Nameservers))
}

func stateCell(s nm.DeviceState) string {
	switch s {
	case nm.DeviceStateActivated:
		return green(s.String())
	case nm.DeviceStateFailed:
		return red(s.String())
	}
	return s.String()
}

func dash(s string) string {
	if s == "" {
		return "---"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func intCell(p *int) string {
	if p == nil {
		return "(Not set)"
	}
	return strconv.Itoa(*p)
}

func joinCell(values []string) string {
	if len(values) == 0 {
		return "(Not set)"
	}
	return strings.Join(values, ", ")
}

func textCell(s string) string {
	if s == "" {
		return "(Not set)"
	}
	return s
}
