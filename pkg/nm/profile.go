package nm

import (
	"fmt"
	"net"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
)

// BridgeProfile describes a bridge connection profile to create.
// Numeric options left nil are omitted from the stored settings so the
// daemon defaults apply.
type BridgeProfile struct {
	ID                string
	Interface         string
	STP               bool
	STPPriority       *int
	ForwardDelay      *int
	MulticastSnooping bool
	VLANFiltering     bool
	VLANDefaultPVID   *int
	CloneMAC          net.HardwareAddr // nil means no MAC pinning
}

// settings renders the profile into the D-Bus settings shape, minting a
// fresh UUID for it. Both IP methods stay on auto so the bridge picks up
// addressing the way the enslaved interface did.
func (p BridgeProfile) settings() (map[string]map[string]dbus.Variant, string) {
	id := uuid.New().String()

	bridge := map[string]dbus.Variant{
		"stp":                dbus.MakeVariant(p.STP),
		"multicast-snooping": dbus.MakeVariant(p.MulticastSnooping),
		"vlan-filtering":     dbus.MakeVariant(p.VLANFiltering),
	}
	if p.STPPriority != nil {
		bridge["priority"] = dbus.MakeVariant(uint16(*p.STPPriority))
	}
	if p.ForwardDelay != nil {
		bridge["forward-delay"] = dbus.MakeVariant(uint16(*p.ForwardDelay))
	}
	if p.VLANDefaultPVID != nil {
		bridge["vlan-default-pvid"] = dbus.MakeVariant(uint16(*p.VLANDefaultPVID))
	}
	if len(p.CloneMAC) > 0 {
		bridge["mac-address"] = dbus.MakeVariant([]byte(p.CloneMAC))
	}

	return map[string]map[string]dbus.Variant{
		"connection": {
			"id":             dbus.MakeVariant(p.ID),
			"uuid":           dbus.MakeVariant(id),
			"type":           dbus.MakeVariant(TypeBridge),
			"interface-name": dbus.MakeVariant(p.Interface),
		},
		"bridge": bridge,
		"ipv4":   {"method": dbus.MakeVariant("auto")},
		"ipv6":   {"method": dbus.MakeVariant("auto")},
	}, id
}

// PortProfile describes an ethernet profile enslaving an interface to a
// bridge identified by profile UUID.
type PortProfile struct {
	ID         string
	Interface  string
	MasterUUID string
}

func (p PortProfile) settings() (map[string]map[string]dbus.Variant, string) {
	id := uuid.New().String()
	return map[string]map[string]dbus.Variant{
		"connection": {
			"id":             dbus.MakeVariant(p.ID),
			"uuid":           dbus.MakeVariant(id),
			"type":           dbus.MakeVariant(TypeEthernet),
			"interface-name": dbus.MakeVariant(p.Interface),
			"master":         dbus.MakeVariant(p.MasterUUID),
			"slave-type":     dbus.MakeVariant(TypeBridge),
		},
	}, id
}

// AddBridge stores a new bridge profile and returns the saved connection.
func (c *Client) AddBridge(p BridgeProfile) (*Connection, error) {
	settings, id := p.settings()
	path, err := c.addConnection(settings)
	if err != nil {
		return nil, fmt.Errorf("adding bridge profile %q: %w", p.ID, err)
	}
	return &Connection{
		Path:      path,
		ID:        p.ID,
		UUID:      id,
		Type:      TypeBridge,
		Interface: p.Interface,
	}, nil
}

// AddBridgePort stores a new port profile bound to a bridge by UUID.
func (c *Client) AddBridgePort(p PortProfile) (*Connection, error) {
	settings, id := p.settings()
	path, err := c.addConnection(settings)
	if err != nil {
		return nil, fmt.Errorf("adding port profile %q: %w", p.ID, err)
	}
	return &Connection{
		Path:      path,
		ID:        p.ID,
		UUID:      id,
		Type:      TypeEthernet,
		Interface: p.Interface,
		Master:    p.MasterUUID,
		SlaveType: TypeBridge,
	}, nil
}

func (c *Client) addConnection(settings map[string]map[string]dbus.Variant) (dbus.ObjectPath, error) {
	var path dbus.ObjectPath
	if err := c.settings.Call(settingsIface+".AddConnection", 0, settings).Store(&path); err != nil {
		return "", err
	}
	return path, nil
}
