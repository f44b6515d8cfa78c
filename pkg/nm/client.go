package nm

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/virtbr-net/virtbr/pkg/util"
)

const (
	busName      = "org.freedesktop.NetworkManager"
	managerPath  = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	settingsPath = dbus.ObjectPath("/org/freedesktop/NetworkManager/Settings")

	managerIface    = "org.freedesktop.NetworkManager"
	settingsIface   = managerIface + ".Settings"
	connectionIface = managerIface + ".Settings.Connection"
	deviceIface     = managerIface + ".Device"
	activeIface     = managerIface + ".Connection.Active"
	ip4ConfigIface  = managerIface + ".IP4Config"
)

// Client is a connection to NetworkManager on the system bus.
type Client struct {
	conn     *dbus.Conn
	manager  dbus.BusObject
	settings dbus.BusObject
}

// Connect opens a private system bus connection and binds the
// NetworkManager manager and settings objects.
func Connect() (*Client, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, util.NewServiceError("connect to system bus", err)
	}
	return &Client{
		conn:     conn,
		manager:  conn.Object(busName, managerPath),
		settings: conn.Object(busName, settingsPath),
	}, nil
}

// Close releases the bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// object binds an object path owned by the NetworkManager service.
func (c *Client) object(path dbus.ObjectPath) dbus.BusObject {
	return c.conn.Object(busName, path)
}

func getString(obj dbus.BusObject, prop string) (string, error) {
	v, err := obj.GetProperty(prop)
	if err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("property %s: unexpected type %T", prop, v.Value())
	}
	return s, nil
}

func getUint32(obj dbus.BusObject, prop string) (uint32, error) {
	v, err := obj.GetProperty(prop)
	if err != nil {
		return 0, err
	}
	n, ok := v.Value().(uint32)
	if !ok {
		return 0, fmt.Errorf("property %s: unexpected type %T", prop, v.Value())
	}
	return n, nil
}

func getBool(obj dbus.BusObject, prop string) (bool, error) {
	v, err := obj.GetProperty(prop)
	if err != nil {
		return false, err
	}
	b, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("property %s: unexpected type %T", prop, v.Value())
	}
	return b, nil
}

func getObjectPath(obj dbus.BusObject, prop string) (dbus.ObjectPath, error) {
	v, err := obj.GetProperty(prop)
	if err != nil {
		return "", err
	}
	p, ok := v.Value().(dbus.ObjectPath)
	if !ok {
		return "", fmt.Errorf("property %s: unexpected type %T", prop, v.Value())
	}
	return p, nil
}

func variantString(v dbus.Variant) string {
	s, _ := v.Value().(string)
	return s
}

func variantBool(v dbus.Variant, fallback bool) bool {
	b, ok := v.Value().(bool)
	if !ok {
		return fallback
	}
	return b
}

// variantInt coerces the unsigned integer widths NetworkManager uses for
// bridge settings. Returns nil when the key is absent or not numeric.
func variantInt(v dbus.Variant) *int {
	var n int
	switch val := v.Value().(type) {
	case uint16:
		n = int(val)
	case uint32:
		n = int(val)
	case int32:
		n = int(val)
	default:
		return nil
	}
	return &n
}
