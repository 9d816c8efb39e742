package layout

import (
	"errors"
	"fmt"

	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
)

// LayoutError is a coordinator failure carrying the NFS4 status the client
// should see.
type LayoutError struct {
	Status uint32
	Op     string
	Err    error
}

func (e *LayoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, types.StatusName(e.Status))
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, types.StatusName(e.Status), e.Err)
}

func (e *LayoutError) Unwrap() error { return e.Err }

// Is matches any LayoutError with the same status and op, so wrapped
// instances compare equal to the sentinels below.
func (e *LayoutError) Is(target error) bool {
	t, ok := target.(*LayoutError)
	if !ok {
		return false
	}
	return t.Status == e.Status && t.Op == e.Op
}

var (
	// ErrLayoutTryLater: no pool became ready before the wait deadline.
	ErrLayoutTryLater = &LayoutError{Status: types.NFS4ERR_LAYOUTTRYLATER, Op: "assignment timeout"}

	// ErrResource: the pool manager could not be reached.
	ErrResource = &LayoutError{Status: types.NFS4ERR_RESOURCE, Op: "no route"}

	// ErrTransient: pool selection or catalog lookup failed; retry later.
	ErrTransient = &LayoutError{Status: types.NFS4ERR_LAYOUTTRYLATER, Op: "allocation failed"}

	// ErrStale: the file is not in the catalog.
	ErrStale = &LayoutError{Status: types.NFS4ERR_STALE, Op: "unknown file"}
)

func wrap(sentinel *LayoutError, err error) error {
	return &LayoutError{Status: sentinel.Status, Op: sentinel.Op, Err: err}
}

// StatusOf maps err to the NFS4 status returned on the wire.
func StatusOf(err error) uint32 {
	if err == nil {
		return types.NFS4_OK
	}
	var le *LayoutError
	if errors.As(err, &le) {
		return le.Status
	}
	return types.NFS4ERR_SERVERFAULT
}
