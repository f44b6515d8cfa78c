package nm

import (
	"net"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestBridgeProfile_Settings(t *testing.T) {
	priority := 16384
	fdelay := 4
	pvid := 100
	mac, _ := net.ParseMAC("52:54:00:ab:0c:01")

	p := BridgeProfile{
		ID:                "c-mybr0",
		Interface:         "mybr0",
		STP:               true,
		STPPriority:       &priority,
		ForwardDelay:      &fdelay,
		MulticastSnooping: true,
		VLANFiltering:     true,
		VLANDefaultPVID:   &pvid,
		CloneMAC:          mac,
	}

	settings, id := p.settings()

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("settings() minted invalid uuid %q: %v", id, err)
	}

	conn := settings["connection"]
	if got := conn["id"].Value(); got != "c-mybr0" {
		t.Errorf("connection id = %v, want %q", got, "c-mybr0")
	}
	if got := conn["uuid"].Value(); got != id {
		t.Errorf("connection uuid = %v, want %q", got, id)
	}
	if got := conn["type"].Value(); got != "bridge" {
		t.Errorf("connection type = %v, want %q", got, "bridge")
	}
	if got := conn["interface-name"].Value(); got != "mybr0" {
		t.Errorf("interface-name = %v, want %q", got, "mybr0")
	}

	bridge := settings["bridge"]
	if got := bridge["stp"].Value(); got != true {
		t.Errorf("stp = %v, want true", got)
	}
	if got := bridge["priority"].Value(); got != uint16(16384) {
		t.Errorf("priority = %v, want uint16 16384", got)
	}
	if got := bridge["forward-delay"].Value(); got != uint16(4) {
		t.Errorf("forward-delay = %v, want uint16 4", got)
	}
	if got := bridge["multicast-snooping"].Value(); got != true {
		t.Errorf("multicast-snooping = %v, want true", got)
	}
	if got := bridge["vlan-filtering"].Value(); got != true {
		t.Errorf("vlan-filtering = %v, want true", got)
	}
	if got := bridge["vlan-default-pvid"].Value(); got != uint16(100) {
		t.Errorf("vlan-default-pvid = %v, want uint16 100", got)
	}
	if got, ok := bridge["mac-address"].Value().([]byte); !ok || !reflect.DeepEqual(got, []byte(mac)) {
		t.Errorf("mac-address = %v, want %v", got, []byte(mac))
	}

	if got := settings["ipv4"]["method"].Value(); got != "auto" {
		t.Errorf("ipv4 method = %v, want %q", got, "auto")
	}
	if got := settings["ipv6"]["method"].Value(); got != "auto" {
		t.Errorf("ipv6 method = %v, want %q", got, "auto")
	}
}

func TestBridgeProfile_Settings_OmitsUnset(t *testing.T) {
	p := BridgeProfile{
		ID:                "c-mybr0",
		Interface:         "mybr0",
		STP:               true,
		MulticastSnooping: true,
	}

	settings, _ := p.settings()
	bridge := settings["bridge"]

	for _, key := range []string{"priority", "forward-delay", "vlan-default-pvid", "mac-address"} {
		if _, present := bridge[key]; present {
			t.Errorf("bridge settings should omit %q when unset", key)
		}
	}
	if got := bridge["vlan-filtering"].Value(); got != false {
		t.Errorf("vlan-filtering = %v, want false", got)
	}
}

func TestBridgeProfile_Settings_FreshUUIDs(t *testing.T) {
	p := BridgeProfile{ID: "c-mybr0", Interface: "mybr0"}

	_, first := p.settings()
	_, second := p.settings()
	if first == second {
		t.Error("settings() should mint a fresh uuid per call")
	}
}

func TestPortProfile_Settings(t *testing.T) {
	p := PortProfile{
		ID:         "c-mybr0-port-eth0",
		Interface:  "eth0",
		MasterUUID: "9a1c0930-8f9c-4b7a-9c2e-000000000001",
	}

	settings, id := p.settings()

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("settings() minted invalid uuid %q: %v", id, err)
	}
	if len(settings) != 1 {
		t.Errorf("port settings should only carry the connection section, got %d sections", len(settings))
	}

	conn := settings["connection"]
	if got := conn["id"].Value(); got != "c-mybr0-port-eth0" {
		t.Errorf("connection id = %v, want %q", got, "c-mybr0-port-eth0")
	}
	if got := conn["type"].Value(); got != "802-3-ethernet" {
		t.Errorf("connection type = %v, want %q", got, "802-3-ethernet")
	}
	if got := conn["interface-name"].Value(); got != "eth0" {
		t.Errorf("interface-name = %v, want %q", got, "eth0")
	}
	if got := conn["master"].Value(); got != "9a1c0930-8f9c-4b7a-9c2e-000000000001" {
		t.Errorf("master = %v, want bridge uuid", got)
	}
	if got := conn["slave-type"].Value(); got != "bridge" {
		t.Errorf("slave-type = %v, want %q", got, "bridge")
	}
}
