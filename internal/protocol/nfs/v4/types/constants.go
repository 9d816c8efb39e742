// Package types contains NFSv4.1 wire types for the parallel NFS (pNFS)
// operations served by the metadata server: LAYOUTGET, LAYOUTRETURN,
// GETDEVICEINFO and GETDEVICELIST, plus the NFSv4.1 file layout bodies
// (RFC 8881 Section 13).
//
// Only the server direction is implemented: arguments are decoded, results
// are encoded. COMPOUND framing lives in the surrounding protocol engine.
package types

import "fmt"

// ============================================================================
// Operation Numbers (RFC 8881 Section 18)
// ============================================================================

const (
	OP_GETDEVICEINFO = 47
	OP_GETDEVICELIST = 48
	OP_LAYOUTCOMMIT  = 49
	OP_LAYOUTGET     = 50
	OP_LAYOUTRETURN  = 51
)

// ============================================================================
// Status Codes (RFC 8881 Section 15)
// ============================================================================

const (
	NFS4_OK = 0

	NFS4ERR_NOENT              = 2
	NFS4ERR_IO                 = 5
	NFS4ERR_INVAL              = 22
	NFS4ERR_STALE              = 70
	NFS4ERR_BADHANDLE          = 10001
	NFS4ERR_BAD_COOKIE         = 10003
	NFS4ERR_NOTSUPP            = 10004
	NFS4ERR_TOOSMALL           = 10005
	NFS4ERR_SERVERFAULT        = 10006
	NFS4ERR_DELAY              = 10008
	NFS4ERR_RESOURCE           = 10018
	NFS4ERR_NOFILEHANDLE       = 10020
	NFS4ERR_BAD_STATEID        = 10025
	NFS4ERR_BADXDR             = 10036
	NFS4ERR_OP_ILLEGAL         = 10044
	NFS4ERR_BADIOMODE          = 10049
	NFS4ERR_BADLAYOUT          = 10050
	NFS4ERR_LAYOUTTRYLATER     = 10058
	NFS4ERR_LAYOUTUNAVAILABLE  = 10059
	NFS4ERR_NOMATCHING_LAYOUT  = 10060
	NFS4ERR_UNKNOWN_LAYOUTTYPE = 10062
)

// ============================================================================
// pNFS Constants
// ============================================================================

// Layout types (RFC 8881 Section 3.3.13).
const (
	LAYOUT4_NFSV4_1_FILES = 1
	LAYOUT4_OSD2_OBJECTS  = 2
	LAYOUT4_BLOCK_VOLUME  = 3
)

// Layout I/O modes (RFC 8881 Section 3.3.20).
const (
	LAYOUTIOMODE4_READ = 1
	LAYOUTIOMODE4_RW   = 2
	LAYOUTIOMODE4_ANY  = 3
)

// Layout return types (RFC 8881 Section 18.44).
const (
	LAYOUTRETURN4_FILE = 1
	LAYOUTRETURN4_FSID = 2
	LAYOUTRETURN4_ALL  = 3
)

const (
	// NFS4_UINT64_MAX is the length that means "to the end of the file".
	NFS4_UINT64_MAX = ^uint64(0)

	// NFS4_DEVICEID4_SIZE is the fixed size of deviceid4.
	NFS4_DEVICEID4_SIZE = 16

	// NFS4_VERIFIER_SIZE is the fixed size of verifier4.
	NFS4_VERIFIER_SIZE = 8
)

// File layout nfl_util4 flags (RFC 8881 Section 13.3). The stripe unit
// occupies the bits above NFL4_UFLG_MASK.
const (
	NFL4_UFLG_MASK            = 0x0000003F
	NFL4_UFLG_DENSE           = 0x00000001
	NFL4_UFLG_COMMIT_THRU_MDS = 0x00000002
)

// IOModeName returns a short printable name for a layout I/O mode.
func IOModeName(mode uint32) string {
	switch mode {
	case LAYOUTIOMODE4_READ:
		return "READ"
	case LAYOUTIOMODE4_RW:
		return "RW"
	case LAYOUTIOMODE4_ANY:
		return "ANY"
	default:
		return "UNKNOWN"
	}
}

// OpName returns the printable name of a pNFS operation.
func OpName(op uint32) string {
	switch op {
	case OP_GETDEVICEINFO:
		return "GETDEVICEINFO"
	case OP_GETDEVICELIST:
		return "GETDEVICELIST"
	case OP_LAYOUTCOMMIT:
		return "LAYOUTCOMMIT"
	case OP_LAYOUTGET:
		return "LAYOUTGET"
	case OP_LAYOUTRETURN:
		return "LAYOUTRETURN"
	default:
		return "UNKNOWN"
	}
}

var statusNames = map[uint32]string{
	NFS4_OK:                    "NFS4_OK",
	NFS4ERR_NOENT:              "NFS4ERR_NOENT",
	NFS4ERR_IO:                 "NFS4ERR_IO",
	NFS4ERR_INVAL:              "NFS4ERR_INVAL",
	NFS4ERR_STALE:              "NFS4ERR_STALE",
	NFS4ERR_BADHANDLE:          "NFS4ERR_BADHANDLE",
	NFS4ERR_BAD_COOKIE:         "NFS4ERR_BAD_COOKIE",
	NFS4ERR_NOTSUPP:            "NFS4ERR_NOTSUPP",
	NFS4ERR_TOOSMALL:           "NFS4ERR_TOOSMALL",
	NFS4ERR_SERVERFAULT:        "NFS4ERR_SERVERFAULT",
	NFS4ERR_DELAY:              "NFS4ERR_DELAY",
	NFS4ERR_RESOURCE:           "NFS4ERR_RESOURCE",
	NFS4ERR_NOFILEHANDLE:       "NFS4ERR_NOFILEHANDLE",
	NFS4ERR_BAD_STATEID:        "NFS4ERR_BAD_STATEID",
	NFS4ERR_BADXDR:             "NFS4ERR_BADXDR",
	NFS4ERR_OP_ILLEGAL:         "NFS4ERR_OP_ILLEGAL",
	NFS4ERR_BADIOMODE:          "NFS4ERR_BADIOMODE",
	NFS4ERR_BADLAYOUT:          "NFS4ERR_BADLAYOUT",
	NFS4ERR_LAYOUTTRYLATER:     "NFS4ERR_LAYOUTTRYLATER",
	NFS4ERR_LAYOUTUNAVAILABLE:  "NFS4ERR_LAYOUTUNAVAILABLE",
	NFS4ERR_NOMATCHING_LAYOUT:  "NFS4ERR_NOMATCHING_LAYOUT",
	NFS4ERR_UNKNOWN_LAYOUTTYPE: "NFS4ERR_UNKNOWN_LAYOUTTYPE",
}

// StatusName returns the symbolic name of an NFS4 status code.
func StatusName(status uint32) string {
	if n, ok := statusNames[status]; ok {
		return n
	}
	return fmt.Sprintf("NFS4ERR_%d", status)
}
