// Package device maps opaque pNFS device identifiers to the network
// endpoints of storage pools.
//
// Every pool that reports readiness gets a DeviceID. A pool that comes back
// on a different address (typically after a restart) is given a fresh id and
// its previous id is retired, so clients never keep talking to a stale
// endpoint.
package device

import (
	"bytes"
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
)

// DeviceID is the 16-byte identifier handed to clients. The numeric value is
// stored as decimal ASCII, zero padded.
type DeviceID types.DeviceId4

// MDS is the reserved id of the metadata server itself, ASCII "0".
var MDS = NewDeviceID(0)

// NewDeviceID renders n into a DeviceID.
func NewDeviceID(n uint64) DeviceID {
	var id DeviceID
	copy(id[:], strconv.FormatUint(n, 10))
	return id
}

// ParseDeviceID parses the text form produced by DeviceID.String.
func ParseDeviceID(s string) (DeviceID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return DeviceID{}, fmt.Errorf("invalid device id %q: %w", s, err)
	}
	return NewDeviceID(n), nil
}

// IsMDS reports whether id is the reserved metadata-server id. The all-zero
// form some clients send is accepted too.
func (id DeviceID) IsMDS() bool {
	return id == MDS || id == DeviceID{}
}

// String returns the decimal value of the id.
func (id DeviceID) String() string {
	if id.IsMDS() {
		return "0"
	}
	if i := bytes.IndexByte(id[:], 0); i >= 0 {
		return string(id[:i])
	}
	return string(id[:])
}

// PoolEndpoint is the current network location of a storage pool.
type PoolEndpoint struct {
	Pool string
	ID   DeviceID
	Addr netip.AddrPort

	// DeviceAddr is the XDR nfsv4_1_file_layout_ds_addr4 body returned by
	// GETDEVICEINFO for this device.
	DeviceAddr []byte
}

// NewPoolEndpoint builds an endpoint and its device address body.
func NewPoolEndpoint(pool string, id DeviceID, addr netip.AddrPort) (PoolEndpoint, error) {
	var buf bytes.Buffer
	if err := types.NewSingleDSAddr(addr).Encode(&buf); err != nil {
		return PoolEndpoint{}, err
	}
	return PoolEndpoint{Pool: pool, ID: id, Addr: addr, DeviceAddr: buf.Bytes()}, nil
}

// Registry owns the device id to endpoint mapping. Safe for concurrent use.
type Registry struct {
	next atomic.Uint64

	mu     sync.RWMutex
	byPool map[string]PoolEndpoint
	byID   map[DeviceID]PoolEndpoint

	metrics *Metrics
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{
		byPool:  make(map[string]PoolEndpoint),
		byID:    make(map[DeviceID]PoolEndpoint),
		metrics: metrics,
	}
}

// Allocate returns the next unused DeviceID. It never returns MDS.
func (r *Registry) Allocate() DeviceID {
	return NewDeviceID(r.next.Add(1))
}

// Resolve returns the live endpoint for a pool name.
func (r *Registry) Resolve(pool string) (PoolEndpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.byPool[pool]
	return ep, ok
}

// Upsert records that pool is reachable at addr. When the pool is unknown or
// its address changed a new DeviceID is allocated and the old one, if any,
// is retired. Otherwise the existing endpoint is returned with isNew false.
func (r *Registry) Upsert(pool string, addr netip.AddrPort) (ep PoolEndpoint, isNew bool, err error) {
	if pool == "" {
		return PoolEndpoint{}, false, errors.New("pool name is required")
	}
	if !addr.IsValid() || addr.Port() == 0 {
		return PoolEndpoint{}, false, fmt.Errorf("invalid address %q for pool %s", addr.String(), pool)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old, known := r.byPool[pool]
	if known && old.Addr == addr {
		return old, false, nil
	}

	ep, err = NewPoolEndpoint(pool, r.Allocate(), addr)
	if err != nil {
		return PoolEndpoint{}, false, fmt.Errorf("build endpoint for pool %s: %w", pool, err)
	}
	if known {
		delete(r.byID, old.ID)
		r.metrics.recordRetired()
		logger.Info("Pool endpoint changed, retiring device",
			"pool", pool,
			"old_device", old.ID.String(),
			"old_addr", old.Addr.String(),
			"new_addr", addr.String())
	}
	r.byPool[pool] = ep
	r.byID[ep.ID] = ep
	r.metrics.recordAllocated(len(r.byID))

	logger.Debug("Device allocated", "pool", pool, "device", ep.ID.String(), "addr", addr.String())
	return ep, true, nil
}

// Lookup returns the endpoint registered under id. MDS is never found here;
// use Device to resolve it.
func (r *Registry) Lookup(id DeviceID) (PoolEndpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.byID[id]
	return ep, ok
}

// List returns a snapshot of all live device ids in allocation order.
func (r *Registry) List() []DeviceID {
	r.mu.RLock()
	eps := make([]PoolEndpoint, 0, len(r.byID))
	for _, ep := range r.byID {
		eps = append(eps, ep)
	}
	r.mu.RUnlock()

	sortByID(eps)
	ids := make([]DeviceID, len(eps))
	for i, ep := range eps {
		ids[i] = ep.ID
	}
	return ids
}

// Pools returns a snapshot of all live endpoints in allocation order.
func (r *Registry) Pools() []PoolEndpoint {
	r.mu.RLock()
	eps := make([]PoolEndpoint, 0, len(r.byPool))
	for _, ep := range r.byPool {
		eps = append(eps, ep)
	}
	r.mu.RUnlock()

	sortByID(eps)
	return eps
}

// Device resolves id to a Device. MDS resolves to local, the address the
// caller is connected to. Unknown ids return false.
func (r *Registry) Device(id DeviceID, local netip.AddrPort) (Device, bool) {
	if id.IsMDS() {
		return Local(local), true
	}
	ep, ok := r.Lookup(id)
	if !ok {
		return Device{}, false
	}
	return Remote(ep), true
}

func sortByID(eps []PoolEndpoint) {
	sort.Slice(eps, func(i, j int) bool {
		a, _ := strconv.ParseUint(eps[i].ID.String(), 10, 64)
		b, _ := strconv.ParseUint(eps[j].ID.String(), 10, 64)
		return a < b
	})
}
