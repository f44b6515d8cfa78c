package bridge

import (
	"fmt"
	"net"
	"sort"

	"github.com/virtbr-net/virtbr/pkg/nm"
	"github.com/virtbr-net/virtbr/pkg/util"
)

// Options carries the add command inputs after flag parsing. Numeric
// pointers are nil when the operator did not pass the flag, so the
// daemon defaults apply.
type Options struct {
	ConnName          string
	BridgeIfname      string
	SlaveInterface    string // empty means auto-select
	CloneMAC          bool
	STP               bool
	STPPriority       *int
	ForwardDelay      *int
	MulticastSnooping bool
	VLANFiltering     bool
	VLANDefaultPVID   *int
	Force             bool
}

// Plan is a validated bridge creation request ready to apply.
type Plan struct {
	ConnName     string
	BridgeIfname string
	Slave        string
	PortName     string
	Profile      nm.BridgeProfile
	Recreate     []nm.Connection // profiles deleted before creation
}

// Plan validates the options, resolves the slave interface and detects
// collisions with existing profiles. It performs no mutations.
func (m *Manager) Plan(opts Options) (*Plan, error) {
	if opts.ConnName == "" {
		return nil, util.NewParameterError("connection name", "must not be empty")
	}
	if err := util.ValidateInterfaceName("bridge interface name", opts.BridgeIfname); err != nil {
		return nil, err
	}
	if opts.STPPriority != nil {
		if err := util.ValidateSTPPriority(*opts.STPPriority); err != nil {
			return nil, err
		}
	}
	if opts.ForwardDelay != nil {
		if err := util.ValidateForwardDelay(*opts.ForwardDelay); err != nil {
			return nil, err
		}
	}
	if opts.VLANDefaultPVID != nil {
		if err := util.ValidatePVID(*opts.VLANDefaultPVID); err != nil {
			return nil, err
		}
	}

	conns, err := m.svc.Connections()
	if err != nil {
		return nil, err
	}

	// Bridges already holding the requested names block the add unless
	// the operator forces a recreation.
	var collided []nm.Connection
	masters := make(map[string]bool)
	for _, c := range conns {
		if c.IsBridge() && (c.ID == opts.ConnName || c.Interface == opts.BridgeIfname) {
			collided = append(collided, c)
			masters[c.UUID] = true
		}
	}
	if len(collided) > 0 && !opts.Force {
		hit := collided[0]
		name := opts.ConnName
		if hit.ID != opts.ConnName {
			name = opts.BridgeIfname
		}
		return nil, &util.BridgeExistsError{Bridge: hit.ID, Name: name}
	}

	devices, err := m.svc.Devices()
	if err != nil {
		return nil, err
	}

	slave := opts.SlaveInterface
	if slave == "" {
		slave, err = selectSlave(devices)
		if err != nil {
			return nil, err
		}
	} else {
		if err := util.ValidateInterfaceName("slave interface", slave); err != nil {
			return nil, err
		}
		if !interfaceExists(devices, slave) {
			return nil, util.NewInterfaceNotFound(slave)
		}
		if !opts.Force {
			if owner := enslavedBy(conns, slave); owner != "" {
				return nil, &util.EnslavedError{Interface: slave, Bridge: owner}
			}
		}
	}

	portName := fmt.Sprintf("%s-port-%s", opts.ConnName, slave)

	plan := &Plan{
		ConnName:     opts.ConnName,
		BridgeIfname: opts.BridgeIfname,
		Slave:        slave,
		PortName:     portName,
		Profile: nm.BridgeProfile{
			ID:                opts.ConnName,
			Interface:         opts.BridgeIfname,
			STP:               opts.STP,
			STPPriority:       opts.STPPriority,
			ForwardDelay:      opts.ForwardDelay,
			MulticastSnooping: opts.MulticastSnooping,
			VLANFiltering:     opts.VLANFiltering,
			VLANDefaultPVID:   opts.VLANDefaultPVID,
		},
	}

	if opts.CloneMAC {
		plan.Profile.CloneMAC = resolveCloneMAC(devices, slave)
	}

	// Forced recreation removes the colliding bridges and their ports.
	plan.Recreate = append(plan.Recreate, collided...)
	for _, c := range conns {
		if c.IsBridgePort() && masters[c.Master] {
			plan.Recreate = append(plan.Recreate, c)
		}
	}
	// Stale non-bridge profiles squatting on the target names are always
	// replaced so the add is re-runnable.
	for _, c := range conns {
		if c.IsBridge() || masters[c.Master] {
			continue
		}
		if c.ID == opts.ConnName || c.ID == portName {
			plan.Recreate = append(plan.Recreate, c)
		}
	}

	return plan, nil
}

// Changes previews the full add workflow: forced deletions, both profile
// creations, and the closing port activation.
func (p *Plan) Changes() *ChangeSet {
	cs := NewChangeSet("add", p.ConnName)
	for _, conn := range p.Recreate {
		cs.Add(ChangeDelete, conn.ID, conn.Interface, "replaced")
	}
	cs.Add(ChangeAdd, p.ConnName, p.BridgeIfname, "bridge profile")
	cs.Add(ChangeAdd, p.PortName, p.Slave, "port profile")
	cs.Add(ChangeActivate, p.PortName, p.Slave, "bring up port")
	return cs
}

// selectSlave picks the default interface to enslave: the first activated
// ethernet device by name, else the first activated Wi-Fi device.
func selectSlave(devices []nm.Device) (string, error) {
	var eth, wifi []string
	for _, dev := range devices {
		if dev.State != nm.DeviceStateActivated || ignoredInterface(dev.Interface) {
			continue
		}
		switch dev.Type {
		case nm.DeviceTypeEthernet:
			eth = append(eth, dev.Interface)
		case nm.DeviceTypeWiFi:
			wifi = append(wifi, dev.Interface)
		}
	}
	sort.Strings(eth)
	sort.Strings(wifi)

	if len(eth) > 0 {
		util.WithInterface(eth[0]).Info("Selected default slave interface (activated ethernet)")
		return eth[0], nil
	}
	if len(wifi) > 0 {
		util.WithInterface(wifi[0]).Info("Selected default slave interface (activated wi-fi)")
		return wifi[0], nil
	}
	return "", fmt.Errorf("no activated ethernet or wi-fi device eligible for bridging: %w", util.ErrNoCandidate)
}

func interfaceExists(devices []nm.Device, iface string) bool {
	for _, dev := range devices {
		if dev.Interface == iface {
			return true
		}
	}
	return false
}

// enslavedBy returns the name of the bridge already holding an interface
// through a port profile, or "" when the interface is free. A port profile
// whose master bridge is gone does not count as enslaved.
func enslavedBy(conns []nm.Connection, iface string) string {
	bridgeByUUID := make(map[string]string)
	for _, c := range conns {
		if c.IsBridge() {
			bridgeByUUID[c.UUID] = c.ID
		}
	}
	for _, c := range conns {
		if c.IsBridgePort() && c.Interface == iface {
			if id, ok := bridgeByUUID[c.Master]; ok {
				return id
			}
		}
	}
	return ""
}

// resolveCloneMAC looks up and parses the slave's hardware address.
// Failures degrade to no cloning with a warning, never an error.
func resolveCloneMAC(devices []nm.Device, slave string) net.HardwareAddr {
	for _, dev := range devices {
		if dev.Interface != slave {
			continue
		}
		if dev.MAC == "" {
			break
		}
		mac, err := net.ParseMAC(dev.MAC)
		if err != nil {
			util.Warnf("Could not parse MAC address %q of %s, not cloning it", dev.MAC, slave)
			return nil
		}
		util.Infof("MAC address of %s is %s", slave, dev.MAC)
		return mac
	}
	util.Warnf("Could not find MAC address for interface %s, not cloning it", slave)
	return nil
}
