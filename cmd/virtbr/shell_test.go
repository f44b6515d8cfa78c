package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/virtbr-net/virtbr/pkg/bridge"
	"github.com/virtbr-net/virtbr/pkg/nm"
	"github.com/virtbr-net/virtbr/pkg/settings"
	"github.com/virtbr-net/virtbr/pkg/util"
)

// fakeService is an in-memory NetworkManager stand-in for the command
// tests. Created profiles land in conns and deletions remove them, so
// follow-up lookups see the result; mutations are also recorded in ops
// as "verb:profile" strings.
type fakeService struct {
	devices []nm.Device
	conns   []nm.Connection
	details map[string]*nm.BridgeDetail
	ip4     map[string]*nm.IP4Config

	devicesErr error
	connsErr   error

	ops []string
}

func (f *fakeService) Devices() ([]nm.Device, error) {
	if f.devicesErr != nil {
		return nil, f.devicesErr
	}
	return f.devices, nil
}

func (f *fakeService) Connections() ([]nm.Connection, error) {
	if f.connsErr != nil {
		return nil, f.connsErr
	}
	return f.conns, nil
}

func (f *fakeService) BridgeDetail(conn nm.Connection) (*nm.BridgeDetail, error) {
	if detail, ok := f.details[conn.ID]; ok {
		return detail, nil
	}
	return &nm.BridgeDetail{}, nil
}

func (f *fakeService) ActiveIP4(iface string) *nm.IP4Config {
	return f.ip4[iface]
}

func (f *fakeService) AddBridge(p nm.BridgeProfile) (*nm.Connection, error) {
	f.ops = append(f.ops, "add-bridge:"+p.ID)
	conn := nm.Connection{ID: p.ID, UUID: "uuid-" + p.ID, Type: nm.TypeBridge, Interface: p.Interface}
	f.conns = append(f.conns, conn)
	return &conn, nil
}

func (f *fakeService) AddBridgePort(p nm.PortProfile) (*nm.Connection, error) {
	f.ops = append(f.ops, "add-port:"+p.ID+":"+p.MasterUUID)
	conn := nm.Connection{
		ID:        p.ID,
		UUID:      "uuid-" + p.ID,
		Type:      nm.TypeEthernet,
		Interface: p.Interface,
		Master:    p.MasterUUID,
		SlaveType: nm.TypeBridge,
	}
	f.conns = append(f.conns, conn)
	return &conn, nil
}

func (f *fakeService) Delete(conn nm.Connection) error {
	f.ops = append(f.ops, "delete:"+conn.ID)
	for i, c := range f.conns {
		if c.UUID == conn.UUID {
			f.conns = append(f.conns[:i], f.conns[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeService) Activate(conn nm.Connection) error {
	f.ops = append(f.ops, "activate:"+conn.ID)
	return nil
}

func (f *fakeService) Deactivate(conn nm.Connection) error {
	f.ops = append(f.ops, "deactivate:"+conn.ID)
	return nil
}

// fakeSource feeds fixed completion values.
type fakeSource struct {
	devices []string
	conns   []string
}

func (f fakeSource) DeviceNames() []string   { return f.devices }
func (f fakeSource) ConnectionIDs() []string { return f.conns }

func newTestShell(fake *fakeService) *Shell {
	return &Shell{mgr: bridge.NewManager(fake), src: fakeSource{}}
}

func assertOps(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	s := newTestShell(&fakeService{})
	err := s.dispatch("bogus")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("dispatch(bogus) = %v, want unknown command error", err)
	}
}

func TestDispatch_ExitAndQuit(t *testing.T) {
	s := newTestShell(&fakeService{})
	for _, cmd := range []string{"exit", "quit"} {
		if err := s.dispatch(cmd); err != errQuit {
			t.Errorf("dispatch(%q) = %v, want errQuit", cmd, err)
		}
	}
}

func TestDispatch_BlankLine(t *testing.T) {
	s := newTestShell(&fakeService{})
	if err := s.dispatch("   "); err != nil {
		t.Errorf("dispatch(blank) = %v, want nil", err)
	}
}

func TestDispatch_Help(t *testing.T) {
	s := newTestShell(&fakeService{})
	for _, cmd := range []string{"help", "?"} {
		if err := s.dispatch(cmd); err != nil {
			t.Errorf("dispatch(%q) = %v, want nil", cmd, err)
		}
	}
}

func TestDispatch_ListCommands(t *testing.T) {
	fake := &fakeService{
		devices: []nm.Device{
			{Interface: "eth0", Type: nm.DeviceTypeEthernet, State: nm.DeviceStateActivated},
		},
		conns: []nm.Connection{
			{ID: "c-mybr0", UUID: "uuid-1", Type: nm.TypeBridge, Interface: "mybr0"},
		},
	}
	s := newTestShell(fake)

	for _, cmd := range []string{"dev", "list_devices", "conn", "list_connections", "showb", "list_bridges"} {
		if err := s.dispatch(cmd); err != nil {
			t.Errorf("dispatch(%q) = %v, want nil", cmd, err)
		}
	}
	if len(fake.ops) != 0 {
		t.Errorf("list commands mutated state: %v", fake.ops)
	}
}

func TestDispatch_DeleteCascade(t *testing.T) {
	fake := &fakeService{
		conns: []nm.Connection{
			{ID: "c-mybr0", UUID: "uuid-1", Type: nm.TypeBridge, Interface: "mybr0"},
			{ID: "c-mybr0-port-eth0", UUID: "uuid-2", Type: nm.TypeEthernet, Interface: "eth0", Master: "uuid-1", SlaveType: nm.TypeBridge},
		},
	}
	s := newTestShell(fake)

	if err := s.dispatch("delete c-mybr0"); err != nil {
		t.Fatalf("dispatch(delete) failed: %v", err)
	}
	assertOps(t, fake.ops, []string{"delete:c-mybr0", "delete:c-mybr0-port-eth0"})
}

func TestDispatch_DeleteDryRun(t *testing.T) {
	fake := &fakeService{
		conns: []nm.Connection{
			{ID: "c-mybr0", UUID: "uuid-1", Type: nm.TypeBridge, Interface: "mybr0"},
		},
	}
	s := newTestShell(fake)

	if err := s.dispatch("delete c-mybr0 --dry-run"); err != nil {
		t.Fatalf("dispatch(delete --dry-run) failed: %v", err)
	}
	if len(fake.ops) != 0 {
		t.Errorf("dry-run mutated state: %v", fake.ops)
	}
}

func TestDispatch_DeleteMissingName(t *testing.T) {
	s := newTestShell(&fakeService{})
	err := s.dispatch("delete")
	if err == nil || !strings.Contains(err.Error(), "requires a connection name") {
		t.Errorf("dispatch(delete) = %v, want missing name error", err)
	}
}

func TestDispatch_ActivateUnknown(t *testing.T) {
	s := newTestShell(&fakeService{})
	err := s.dispatch("activate nope")
	if !errors.Is(err, util.ErrConnectionNotFound) {
		t.Errorf("dispatch(activate nope) = %v, want ErrConnectionNotFound", err)
	}
}

func TestDispatch_Deactivate(t *testing.T) {
	fake := &fakeService{
		conns: []nm.Connection{
			{ID: "c-mybr0", UUID: "uuid-1", Type: nm.TypeBridge, Interface: "mybr0"},
		},
	}
	s := newTestShell(fake)

	if err := s.dispatch("deactivate c-mybr0"); err != nil {
		t.Fatalf("dispatch(deactivate) failed: %v", err)
	}
	assertOps(t, fake.ops, []string{"deactivate:c-mybr0"})
}

func TestDispatch_AddDryRun(t *testing.T) {
	userSettings = &settings.Settings{}
	fake := &fakeService{
		devices: []nm.Device{
			{Interface: "eth0", Type: nm.DeviceTypeEthernet, MAC: "AA:BB:CC:DD:EE:FF", State: nm.DeviceStateActivated},
		},
	}
	s := newTestShell(fake)

	if err := s.dispatch("add -i eth0 --dry-run"); err != nil {
		t.Fatalf("dispatch(add --dry-run) failed: %v", err)
	}
	if len(fake.ops) != 0 {
		t.Errorf("dry-run mutated state: %v", fake.ops)
	}
}

func TestDispatch_AddInvalidYesNo(t *testing.T) {
	userSettings = &settings.Settings{}
	s := newTestShell(&fakeService{})
	err := s.dispatch("add --stp maybe")
	if !errors.Is(err, util.ErrInvalidParameter) {
		t.Errorf("dispatch(add --stp maybe) = %v, want ErrInvalidParameter", err)
	}
}

func TestParseNameArg(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantName string
		wantDry  bool
		wantErr  bool
	}{
		{name: "no args", args: nil, wantErr: true},
		{name: "name only", args: []string{"c-mybr0"}, wantName: "c-mybr0"},
		{name: "name with dry-run", args: []string{"c-mybr0", "--dry-run"}, wantName: "c-mybr0", wantDry: true},
		{name: "dry-run after extra token", args: []string{"c-mybr0", "extra", "--dry-run"}, wantName: "c-mybr0", wantDry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, dry, err := parseNameArg("delete", tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseNameArg() failed: %v", err)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if dry != tt.wantDry {
				t.Errorf("dry = %v, want %v", dry, tt.wantDry)
			}
		})
	}
}

func TestLiveSource_DeviceNames(t *testing.T) {
	fake := &fakeService{
		devices: []nm.Device{
			{Interface: "wlan0", Type: nm.DeviceTypeWiFi, State: nm.DeviceStateActivated},
			{Interface: "eth0", Type: nm.DeviceTypeEthernet, State: nm.DeviceStateDisconnected},
			{Interface: "docker0", Type: nm.DeviceTypeEthernet, State: nm.DeviceStateActivated},
			{Interface: "mybr0", Type: nm.DeviceTypeBridge, State: nm.DeviceStateActivated},
		},
	}
	src := liveSource{mgr: bridge.NewManager(fake)}

	got := src.DeviceNames()
	want := []string{"eth0", "wlan0"}
	if len(got) != len(want) {
		t.Fatalf("DeviceNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DeviceNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLiveSource_DeviceNamesError(t *testing.T) {
	fake := &fakeService{devicesErr: errors.New("bus gone")}
	src := liveSource{mgr: bridge.NewManager(fake)}
	if got := src.DeviceNames(); got != nil {
		t.Errorf("DeviceNames() on error = %v, want nil", got)
	}
}

func TestLiveSource_ConnectionIDs(t *testing.T) {
	fake := &fakeService{
		conns: []nm.Connection{
			{ID: "c-a", UUID: "uuid-a"},
			{ID: "c-b", UUID: "uuid-b"},
		},
	}
	src := liveSource{mgr: bridge.NewManager(fake)}

	got := src.ConnectionIDs()
	want := []string{"c-a", "c-b", "uuid-a", "uuid-b"}
	if len(got) != len(want) {
		t.Fatalf("ConnectionIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ConnectionIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func candidateStrings(newLine [][]rune) []string {
	out := make([]string, 0, len(newLine))
	for _, r := range newLine {
		out = append(out, string(r))
	}
	return out
}

func TestCompleter(t *testing.T) {
	src := fakeSource{
		devices: []string{"eth0", "wlan0"},
		conns:   []string{"c-mybr0", "c-br1"},
	}
	c := newCompleter(src)

	t.Run("command prefix", func(t *testing.T) {
		line := []rune("del")
		newLine, _ := c.Do(line, len(line))
		if len(newLine) != 1 || string(newLine[0]) != "ete " {
			t.Errorf("completing %q = %v, want [\"ete \"]", "del", candidateStrings(newLine))
		}
	})

	t.Run("delete argument offers connections", func(t *testing.T) {
		line := []rune("delete ")
		newLine, _ := c.Do(line, len(line))
		if len(newLine) != 2 {
			t.Fatalf("completing %q = %v, want 2 candidates", "delete ", candidateStrings(newLine))
		}
	})

	t.Run("delete argument narrows by prefix", func(t *testing.T) {
		line := []rune("delete c-m")
		newLine, _ := c.Do(line, len(line))
		if len(newLine) != 1 || string(newLine[0]) != "ybr0 " {
			t.Errorf("completing %q = %v, want [\"ybr0 \"]", "delete c-m", candidateStrings(newLine))
		}
	})

	t.Run("slave interface offers devices", func(t *testing.T) {
		line := []rune("add --slave-interface ")
		newLine, _ := c.Do(line, len(line))
		if len(newLine) != 2 {
			t.Fatalf("completing %q = %v, want 2 candidates", "add --slave-interface ", candidateStrings(newLine))
		}
	})

	t.Run("slave interface narrows by prefix", func(t *testing.T) {
		line := []rune("add --slave-interface eth")
		newLine, _ := c.Do(line, len(line))
		if len(newLine) != 1 || string(newLine[0]) != "0 " {
			t.Errorf("completing %q = %v, want [\"0 \"]", "add --slave-interface eth", candidateStrings(newLine))
		}
	})

	t.Run("short slave flag offers devices", func(t *testing.T) {
		line := []rune("add -i ")
		newLine, _ := c.Do(line, len(line))
		if len(newLine) != 2 {
			t.Fatalf("completing %q = %v, want 2 candidates", "add -i ", candidateStrings(newLine))
		}
	})

	t.Run("yes no values", func(t *testing.T) {
		line := []rune("add --stp ")
		newLine, _ := c.Do(line, len(line))
		if len(newLine) != 2 {
			t.Fatalf("completing %q = %v, want 2 candidates", "add --stp ", candidateStrings(newLine))
		}
	})
}
