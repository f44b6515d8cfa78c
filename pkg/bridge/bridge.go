// Package bridge implements the bridge provisioning workflows on top of
// the NetworkManager client: inspection, planning, creation, activation
// and teardown of bridge profiles and their port profiles.
package bridge

import (
	"sort"
	"strings"

	"github.com/virtbr-net/virtbr/pkg/nm"
	"github.com/virtbr-net/virtbr/pkg/util"
)

// Service is the slice of the NetworkManager client the workflows use.
// *nm.Client satisfies it; tests substitute a fake.
type Service interface {
	Devices() ([]nm.Device, error)
	Connections() ([]nm.Connection, error)
	BridgeDetail(conn nm.Connection) (*nm.BridgeDetail, error)
	ActiveIP4(iface string) *nm.IP4Config
	AddBridge(p nm.BridgeProfile) (*nm.Connection, error)
	AddBridgePort(p nm.PortProfile) (*nm.Connection, error)
	Delete(conn nm.Connection) error
	Activate(conn nm.Connection) error
	Deactivate(conn nm.Connection) error
}

// Manager runs the bridge workflows against a NetworkManager service.
type Manager struct {
	svc Service
}

// NewManager creates a Manager on top of a service connection.
func NewManager(svc Service) *Manager {
	return &Manager{svc: svc}
}

// Devices lists the network devices known to the service.
func (m *Manager) Devices() ([]nm.Device, error) {
	return m.svc.Devices()
}

// Connections lists all saved connection profiles.
func (m *Manager) Connections() ([]nm.Connection, error) {
	return m.svc.Connections()
}

// ActiveIP4 returns the live IPv4 state of an interface, nil when it has none.
func (m *Manager) ActiveIP4(iface string) *nm.IP4Config {
	return m.svc.ActiveIP4(iface)
}

// Port is an interface enslaved to a bridge through a port profile.
type Port struct {
	Interface string
	Profile   string
}

// Bridge is a bridge profile joined with its stored settings and the
// port profiles enslaved to it.
type Bridge struct {
	Connection nm.Connection
	Settings   nm.BridgeSettings
	IP4        nm.ProfileIP4
	Ports      []Port
}

// Bridges returns all bridge profiles with their settings and ports.
func (m *Manager) Bridges() ([]Bridge, error) {
	conns, err := m.svc.Connections()
	if err != nil {
		return nil, err
	}

	portsByMaster := make(map[string][]Port)
	for _, conn := range conns {
		if conn.IsBridgePort() {
			portsByMaster[conn.Master] = append(portsByMaster[conn.Master], Port{
				Interface: conn.Interface,
				Profile:   conn.ID,
			})
		}
	}

	var bridges []Bridge
	for _, conn := range conns {
		if !conn.IsBridge() || conn.UUID == "" {
			continue
		}
		detail, err := m.svc.BridgeDetail(conn)
		if err != nil {
			return nil, err
		}
		bridges = append(bridges, Bridge{
			Connection: conn,
			Settings:   detail.BridgeSettings,
			IP4:        detail.IP4,
			Ports:      portsByMaster[conn.UUID],
		})
	}
	return bridges, nil
}

// findConnection resolves a profile by connection name or UUID. The full
// profile list rides along so callers can avoid a second fetch.
func (m *Manager) findConnection(nameOrUUID string) (*nm.Connection, []nm.Connection, error) {
	conns, err := m.svc.Connections()
	if err != nil {
		return nil, nil, err
	}
	for _, c := range conns {
		if c.ID == nameOrUUID || c.UUID == nameOrUUID {
			found := c
			util.WithConnection(found.ID).Debugf("resolved connection, uuid %s", found.UUID)
			return &found, conns, nil
		}
	}
	return nil, conns, util.NewConnectionNotFound(nameOrUUID)
}

// ignoredPrefixes are interface name prefixes never offered for enslaving:
// loopbacks, libvirt and container plumbing, and Wi-Fi P2P pseudo devices.
var ignoredPrefixes = []string{"lo", "virbr", "vnet", "docker", "p2p-dev-"}

func ignoredInterface(iface string) bool {
	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(iface, prefix) {
			return true
		}
	}
	return false
}

// SlaveCandidates returns the ethernet and Wi-Fi interfaces eligible for
// enslaving, sorted by name.
func (m *Manager) SlaveCandidates() ([]string, error) {
	devices, err := m.svc.Devices()
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, dev := range devices {
		if dev.Type != nm.DeviceTypeEthernet && dev.Type != nm.DeviceTypeWiFi {
			continue
		}
		if ignoredInterface(dev.Interface) {
			continue
		}
		candidates = append(candidates, dev.Interface)
	}
	sort.Strings(candidates)
	return candidates, nil
}
