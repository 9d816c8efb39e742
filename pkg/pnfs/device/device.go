package device

import (
	"bytes"
	"net/netip"

	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
)

// Device is either the metadata server itself (local) or a remote storage
// pool. The zero value is not a valid device.
type Device struct {
	local  bool
	addr   netip.AddrPort
	remote PoolEndpoint
}

// Local returns the metadata-server device reachable at addr.
func Local(addr netip.AddrPort) Device {
	return Device{local: true, addr: addr}
}

// Remote returns the device served by a storage pool.
func Remote(ep PoolEndpoint) Device {
	return Device{remote: ep, addr: ep.Addr}
}

// IsLocal reports whether the device is the metadata server.
func (d Device) IsLocal() bool { return d.local }

// ID returns the device identifier handed to clients.
func (d Device) ID() DeviceID {
	if d.local {
		return MDS
	}
	return d.remote.ID
}

// Addr returns the network address clients connect to.
func (d Device) Addr() netip.AddrPort { return d.addr }

// Endpoint returns the pool endpoint of a remote device.
func (d Device) Endpoint() (PoolEndpoint, bool) {
	return d.remote, !d.local
}

// AddrBody returns the GETDEVICEINFO address body for the device.
func (d Device) AddrBody() ([]byte, error) {
	if !d.local {
		return d.remote.DeviceAddr, nil
	}
	var buf bytes.Buffer
	if err := types.NewSingleDSAddr(d.addr).Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
