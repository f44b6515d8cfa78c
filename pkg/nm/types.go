// Package nm talks to NetworkManager over the system D-Bus.
//
// It exposes a thin typed surface over the org.freedesktop.NetworkManager
// API: device enumeration, saved connection profiles, and the profile
// operations the bridge workflows need. Policy (validation, candidate
// selection, force semantics) lives in pkg/bridge; nothing D-Bus specific
// leaks out of this package.
package nm

import (
	"fmt"
	"strings"
)

// DeviceType is the NetworkManager device type code.
type DeviceType uint32

// Device types the bridge workflows branch on.
const (
	DeviceTypeUnknown  DeviceType = 0
	DeviceTypeEthernet DeviceType = 1
	DeviceTypeWiFi     DeviceType = 2
	DeviceTypeBridge   DeviceType = 5
	DeviceTypeWiFiP2P  DeviceType = 28
)

var deviceTypeNames = map[DeviceType]string{
	0: "Unknown", 1: "Ethernet", 2: "Wi-Fi", 3: "WWAN", 4: "OLPC Mesh",
	5: "Bridge", 6: "Bluetooth", 7: "WiMAX", 8: "Modem", 9: "TUN",
	10: "InfiniBand", 11: "Bond", 12: "VLAN", 13: "ADSL", 14: "Team",
	15: "Generic", 16: "Veth", 17: "MACVLAN", 18: "OVS Port",
	19: "OVS Interface", 20: "Dummy", 21: "MACsec", 22: "IPVLAN",
	23: "OVS Bridge", 24: "IP Tunnel", 25: "Loopback", 26: "6LoWPAN",
	27: "HSR", 28: "Wi-Fi P2P", 29: "VRF", 30: "WireGuard",
	31: "WPAN", 32: "VPRP",
}

func (t DeviceType) String() string {
	if name, ok := deviceTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", uint32(t))
}

// DeviceState is the NetworkManager device state code.
type DeviceState uint32

const (
	DeviceStateUnmanaged    DeviceState = 10
	DeviceStateUnavailable  DeviceState = 20
	DeviceStateDisconnected DeviceState = 30
	DeviceStateActivated    DeviceState = 100
	DeviceStateFailed       DeviceState = 120
)

var deviceStateNames = map[DeviceState]string{
	10: "Unmanaged", 20: "Unavailable", 30: "Disconnected", 40: "Prepare",
	50: "Config", 60: "Need Auth", 70: "IP Config", 80: "IP Check",
	90: "Secondaries", 100: "Activated", 110: "Deactivating", 120: "Failed",
}

func (s DeviceState) String() string {
	if name, ok := deviceStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", uint32(s))
}

// normalizeType corrects device type codes misreported by some
// NetworkManager builds: bridges can come back as 13 and Wi-Fi P2P
// devices as 30.
func normalizeType(t DeviceType, iface string) DeviceType {
	switch {
	case t == 13 && strings.Contains(iface, "br"):
		return DeviceTypeBridge
	case t == 30 && strings.HasPrefix(iface, "p2p-dev-"):
		return DeviceTypeWiFiP2P
	}
	return t
}
