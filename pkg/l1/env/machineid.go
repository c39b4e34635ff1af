package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves an ID identifying the machine, protected by
// hashing so the raw machine ID never leaves the host. It falls back
// to "local" when the machine ID is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID("arcadecar")
	if err != nil {
		glog.V(1).Infof("machine id unavailable: %v", err)
		return "local"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
