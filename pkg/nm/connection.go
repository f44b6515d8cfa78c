package nm

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/virtbr-net/virtbr/pkg/util"
)

// Connection profile types stored in the connection section.
const (
	TypeBridge   = "bridge"
	TypeEthernet = "802-3-ethernet"
)

// Connection is a saved NetworkManager connection profile.
type Connection struct {
	Path      dbus.ObjectPath
	ID        string
	UUID      string
	Type      string
	Interface string
	Master    string // master profile UUID when this is a port profile
	SlaveType string
}

// IsBridge reports whether the profile defines a bridge.
func (c Connection) IsBridge() bool {
	return c.Type == TypeBridge
}

// IsBridgePort reports whether the profile enslaves an interface to a bridge.
func (c Connection) IsBridgePort() bool {
	return c.SlaveType == TypeBridge && c.Master != ""
}

// Connections lists all saved connection profiles.
func (c *Client) Connections() ([]Connection, error) {
	var paths []dbus.ObjectPath
	if err := c.settings.Call(settingsIface+".ListConnections", 0).Store(&paths); err != nil {
		return nil, util.NewServiceError("list connections", err)
	}

	conns := make([]Connection, 0, len(paths))
	for _, path := range paths {
		conn, err := c.connection(path)
		if err != nil {
			return nil, util.NewServiceError("read connection settings", err)
		}
		conns = append(conns, *conn)
	}
	return conns, nil
}

func (c *Client) connection(path dbus.ObjectPath) (*Connection, error) {
	settings, err := c.connectionSettings(path)
	if err != nil {
		return nil, err
	}
	return parseConnection(path, settings), nil
}

func (c *Client) connectionSettings(path dbus.ObjectPath) (map[string]map[string]dbus.Variant, error) {
	var settings map[string]map[string]dbus.Variant
	if err := c.object(path).Call(connectionIface+".GetSettings", 0).Store(&settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func parseConnection(path dbus.ObjectPath, settings map[string]map[string]dbus.Variant) *Connection {
	section := settings["connection"]
	return &Connection{
		Path:      path,
		ID:        variantString(section["id"]),
		UUID:      variantString(section["uuid"]),
		Type:      variantString(section["type"]),
		Interface: variantString(section["interface-name"]),
		Master:    variantString(section["master"]),
		SlaveType: variantString(section["slave-type"]),
	}
}

// BridgeSettings is the stored bridge section of a bridge profile.
// Numeric fields are nil when the profile leaves them at the daemon default.
type BridgeSettings struct {
	STP               bool
	Priority          *int
	ForwardDelay      *int
	MulticastSnooping bool
	VLANFiltering     bool
	VLANDefaultPVID   *int
	MACAddress        string // formatted, empty when not pinned
}

// ProfileIP4 is the stored ipv4 section of a profile.
type ProfileIP4 struct {
	Method      string
	Addresses   []string // CIDR notation
	Gateway     string
	Nameservers []string
}

// BridgeDetail joins the bridge and ipv4 sections of one bridge profile.
type BridgeDetail struct {
	BridgeSettings
	IP4 ProfileIP4
}

// BridgeDetail reads and parses the stored settings of a bridge profile.
func (c *Client) BridgeDetail(conn Connection) (*BridgeDetail, error) {
	settings, err := c.connectionSettings(conn.Path)
	if err != nil {
		return nil, util.NewServiceError("read bridge settings", err)
	}

	bridge := settings["bridge"]
	detail := &BridgeDetail{
		BridgeSettings: BridgeSettings{
			STP:               variantBool(bridge["stp"], true),
			Priority:          variantInt(bridge["priority"]),
			ForwardDelay:      variantInt(bridge["forward-delay"]),
			MulticastSnooping: variantBool(bridge["multicast-snooping"], true),
			VLANFiltering:     variantBool(bridge["vlan-filtering"], false),
			VLANDefaultPVID:   variantInt(bridge["vlan-default-pvid"]),
			MACAddress:        formatMAC(bridge["mac-address"]),
		},
		IP4: parseProfileIP4(settings["ipv4"]),
	}
	return detail, nil
}

func formatMAC(v dbus.Variant) string {
	raw, ok := v.Value().([]byte)
	if !ok || len(raw) == 0 {
		return ""
	}
	out := ""
	for i, b := range raw {
		if i > 0 {
			out += ":"
		}
		out += fmt.Sprintf("%02X", b)
	}
	return out
}

func parseProfileIP4(section map[string]dbus.Variant) ProfileIP4 {
	ip4 := ProfileIP4{Method: "disabled"}
	if section == nil {
		return ip4
	}
	if method := variantString(section["method"]); method != "" {
		ip4.Method = method
	}
	if addrs, ok := section["addresses"].Value().([][]uint32); ok {
		for _, addr := range addrs {
			if len(addr) >= 2 {
				ip4.Addresses = append(ip4.Addresses, fmt.Sprintf("%s/%d", ipv4FromLE(addr[0]), addr[1]))
			}
		}
	}
	ip4.Gateway = variantString(section["gateway"])
	if servers, ok := section["dns"].Value().([]uint32); ok {
		for _, s := range servers {
			ip4.Nameservers = append(ip4.Nameservers, ipv4FromLE(s).String())
		}
	}
	return ip4
}

// Delete removes a saved profile.
func (c *Client) Delete(conn Connection) error {
	if call := c.object(conn.Path).Call(connectionIface+".Delete", 0); call.Err != nil {
		return fmt.Errorf("deleting connection %q: %w", conn.ID, call.Err)
	}
	return nil
}

// Activate asks NetworkManager to bring a profile up, letting the daemon
// pick the device and specific object.
func (c *Client) Activate(conn Connection) error {
	var active dbus.ObjectPath
	err := c.manager.Call(managerIface+".ActivateConnection", 0,
		conn.Path, dbus.ObjectPath("/"), dbus.ObjectPath("/")).Store(&active)
	if err != nil {
		return &util.ActivationError{Connection: conn.ID, Err: err}
	}
	util.Debugf("activation started for %s: %s", conn.ID, active)
	return nil
}

// Deactivate takes down the active connection backing a profile.
func (c *Client) Deactivate(conn Connection) error {
	v, err := c.manager.GetProperty(managerIface + ".ActiveConnections")
	if err != nil {
		return util.NewServiceError("list active connections", err)
	}
	active, _ := v.Value().([]dbus.ObjectPath)

	for _, path := range active {
		profilePath, err := getObjectPath(c.object(path), activeIface+".Connection")
		if err != nil || profilePath != conn.Path {
			continue
		}
		if call := c.manager.Call(managerIface+".DeactivateConnection", 0, path); call.Err != nil {
			return fmt.Errorf("deactivating connection %q: %w", conn.ID, call.Err)
		}
		return nil
	}
	return &util.NotActiveError{Connection: conn.ID}
}
