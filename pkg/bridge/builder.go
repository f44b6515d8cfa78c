package bridge

import (
	"fmt"

	"github.com/virtbr-net/virtbr/pkg/nm"
	"github.com/virtbr-net/virtbr/pkg/util"
)

// Apply executes a plan: forced deletions, then the bridge profile, then
// the port profile. Profiles are left inactive; activating the port is a
// separate step. There is no rollback: when enslaving fails after the
// bridge profile was stored, the error names the orphan.
func (m *Manager) Apply(plan *Plan) error {
	for _, conn := range plan.Recreate {
		if err := m.svc.Delete(conn); err != nil {
			return fmt.Errorf("removing existing profile %q: %w", conn.ID, err)
		}
		util.WithConnection(conn.ID).Info("Deleted existing connection")
	}

	util.WithConnection(plan.ConnName).Info("Creating bridge profile")
	master, err := m.svc.AddBridge(plan.Profile)
	if err != nil {
		return err
	}
	util.WithConnection(master.ID).Debugf("bridge profile stored at %s", master.Path)

	port := nm.PortProfile{
		ID:         plan.PortName,
		Interface:  plan.Slave,
		MasterUUID: master.UUID,
	}
	if _, err := m.svc.AddBridgePort(port); err != nil {
		return fmt.Errorf("bridge profile %q was created but enslaving %s failed, delete %q manually or rerun with --force: %w",
			master.ID, plan.Slave, master.ID, err)
	}
	util.WithInterface(plan.Slave).Info("Enslaved interface to bridge")
	return nil
}

// Delete removes a profile by connection name or UUID. Deleting a bridge
// also removes its port profiles.
func (m *Manager) Delete(name string, dryRun bool) (*ChangeSet, error) {
	target, conns, err := m.findConnection(name)
	if err != nil {
		return nil, err
	}

	victims := []nm.Connection{*target}
	if target.IsBridge() {
		for _, c := range conns {
			if c.IsBridgePort() && c.Master == target.UUID {
				victims = append(victims, c)
			}
		}
	}

	cs := NewChangeSet("delete", target.ID)
	for _, v := range victims {
		detail := "profile"
		switch {
		case v.IsBridge():
			detail = "bridge profile"
		case v.IsBridgePort():
			detail = "port profile"
		}
		cs.Add(ChangeDelete, v.ID, v.Interface, detail)
	}

	for _, v := range victims {
		if dryRun {
			util.WithConnection(v.ID).Info("DRY-RUN: would delete connection")
			continue
		}
		if err := m.svc.Delete(v); err != nil {
			return cs, err
		}
		util.WithConnection(v.ID).Info("Successfully deleted connection")
	}
	return cs, nil
}

// Activate brings up a profile by connection name or UUID.
func (m *Manager) Activate(name string, dryRun bool) (*ChangeSet, error) {
	target, _, err := m.findConnection(name)
	if err != nil {
		return nil, err
	}

	cs := NewChangeSet("activate", target.ID)
	cs.Add(ChangeActivate, target.ID, target.Interface, "")

	if dryRun {
		util.WithConnection(target.ID).Info("DRY-RUN: would activate connection")
		return cs, nil
	}
	if err := m.svc.Activate(*target); err != nil {
		return cs, err
	}
	util.WithConnection(target.ID).Info("Activation command sent, check status manually")
	return cs, nil
}

// Deactivate takes down the active connection behind a profile resolved
// by connection name or UUID.
func (m *Manager) Deactivate(name string, dryRun bool) (*ChangeSet, error) {
	target, _, err := m.findConnection(name)
	if err != nil {
		return nil, err
	}

	cs := NewChangeSet("deactivate", target.ID)
	cs.Add(ChangeDeactivate, target.ID, target.Interface, "")

	if dryRun {
		util.WithConnection(target.ID).Info("DRY-RUN: would deactivate connection")
		return cs, nil
	}
	if err := m.svc.Deactivate(*target); err != nil {
		return cs, err
	}
	util.WithConnection(target.ID).Info("Successfully deactivated connection")
	return cs, nil
}
