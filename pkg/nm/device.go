package nm

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/godbus/dbus/v5"

	"github.com/virtbr-net/virtbr/pkg/util"
)

// Device is a snapshot of one NetworkManager device.
type Device struct {
	Path        dbus.ObjectPath
	Interface   string
	Type        DeviceType
	MAC         string // empty when the device has no hardware address
	State       DeviceState
	Connection  string // active connection profile name, empty when none
	Autoconnect bool
}

// Devices lists all devices known to NetworkManager.
func (c *Client) Devices() ([]Device, error) {
	var paths []dbus.ObjectPath
	if err := c.manager.Call(managerIface+".GetAllDevices", 0).Store(&paths); err != nil {
		return nil, util.NewServiceError("list devices", err)
	}

	devices := make([]Device, 0, len(paths))
	for _, path := range paths {
		dev, err := c.device(path)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *dev)
	}
	return devices, nil
}

func (c *Client) device(path dbus.ObjectPath) (*Device, error) {
	obj := c.object(path)

	iface, err := getString(obj, deviceIface+".Interface")
	if err != nil {
		return nil, util.NewServiceError("read device properties", err)
	}
	typeNum, err := getUint32(obj, deviceIface+".DeviceType")
	if err != nil {
		return nil, util.NewServiceError("read device properties", err)
	}
	stateNum, err := getUint32(obj, deviceIface+".State")
	if err != nil {
		return nil, util.NewServiceError("read device properties", err)
	}
	autoconnect, err := getBool(obj, deviceIface+".Autoconnect")
	if err != nil {
		return nil, util.NewServiceError("read device properties", err)
	}

	devType := normalizeType(DeviceType(typeNum), iface)
	if devType != DeviceType(typeNum) {
		util.Debugf("corrected device type for %s from %d to %d", iface, typeNum, devType)
	}

	dev := &Device{
		Path:        path,
		Interface:   iface,
		Type:        devType,
		State:       DeviceState(stateNum),
		Autoconnect: autoconnect,
	}

	// HwAddress is missing on some device classes and older daemons
	if mac, err := getString(obj, deviceIface+".HwAddress"); err == nil {
		dev.MAC = mac
	}

	dev.Connection = c.activeConnectionID(obj)
	return dev, nil
}

// activeConnectionID resolves the profile name behind a device's active
// connection. Returns "" when the device is not bound to a profile.
func (c *Client) activeConnectionID(obj dbus.BusObject) string {
	acPath, err := getObjectPath(obj, deviceIface+".ActiveConnection")
	if err != nil || acPath == "/" {
		return ""
	}
	profilePath, err := getObjectPath(c.object(acPath), activeIface+".Connection")
	if err != nil {
		return ""
	}
	conn, err := c.connection(profilePath)
	if err != nil {
		return ""
	}
	return conn.ID
}

// IP4Config is the live IPv4 state of a device.
type IP4Config struct {
	Addresses   []string // CIDR notation
	Gateway     string
	Nameservers []string
}

// ActiveIP4 returns the live IPv4 configuration for an interface, or nil
// when the interface is unknown or has no active IPv4 lease.
func (c *Client) ActiveIP4(iface string) *IP4Config {
	if iface == "" {
		return nil
	}

	var devPath dbus.ObjectPath
	if err := c.manager.Call(managerIface+".GetDeviceByIpIface", 0, iface).Store(&devPath); err != nil {
		util.Debugf("no device for interface %s: %v", iface, err)
		return nil
	}

	cfgPath, err := getObjectPath(c.object(devPath), deviceIface+".Ip4Config")
	if err != nil || cfgPath == "/" {
		return nil
	}

	var props map[string]dbus.Variant
	err = c.object(cfgPath).Call("org.freedesktop.DBus.Properties.GetAll", 0, ip4ConfigIface).Store(&props)
	if err != nil {
		util.Debugf("read ip4 config for %s: %v", iface, err)
		return nil
	}

	cfg := &IP4Config{}
	if addrs, ok := props["Addresses"].Value().([][]uint32); ok {
		for _, addr := range addrs {
			if len(addr) >= 2 {
				cfg.Addresses = append(cfg.Addresses, fmt.Sprintf("%s/%d", ipv4FromLE(addr[0]), addr[1]))
			}
		}
	}
	if gw, ok := props["Gateway"].Value().(string); ok {
		cfg.Gateway = gw
	}
	if servers, ok := props["Nameservers"].Value().([]uint32); ok {
		for _, s := range servers {
			cfg.Nameservers = append(cfg.Nameservers, ipv4FromLE(s).String())
		}
	}
	return cfg
}

// ipv4FromLE unpacks the little-endian word NetworkManager uses for
// legacy IPv4 addresses.
func ipv4FromLE(v uint32) net.IP {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return net.IP(b)
}
