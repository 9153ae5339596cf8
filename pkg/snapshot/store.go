package snapshot

import (
	"context"
	"errors"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Store persists the last rendered tree of each session.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores snap under id, overwriting any previous snapshot.
	Save(ctx context.Context, id string, snap Snapshot) error

	// Load returns the snapshot stored under id, or ErrNotFound.
	Load(ctx context.Context, id string) (Snapshot, error)

	// Delete removes the snapshot stored under id. Deleting a missing
	// snapshot is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

// Snapshot is a rendered tree and the sequence number of the last patch
// batch that produced it.
//
// Callback handles are stored by id only. A process that restores a
// snapshot must re-register handlers before dispatching to them.
type Snapshot struct {
	Seq  uint64
	Root *vdom.Node
}

var (
	// ErrNotFound is returned by Load when no snapshot is stored.
	ErrNotFound = vterrors.New("E501")

	// ErrStoreClosed is returned when operations are attempted on a closed
	// store.
	ErrStoreClosed = errors.New("snapshot: store is closed")
)

// Encode serializes s with the wire codec.
func Encode(s Snapshot) []byte {
	return protocol.EncodeSnapshot(&protocol.SnapshotMessage{Seq: s.Seq, Root: s.Root})
}

// Decode parses data written by Encode.
func Decode(data []byte) (Snapshot, error) {
	sm, err := protocol.DecodeSnapshot(data)
	if err != nil {
		return Snapshot{}, backendError("decode", err)
	}
	return Snapshot{Seq: sm.Seq, Root: sm.Root}, nil
}

func backendError(op string, err error) error {
	return vterrors.New("E502").WithDetail("snapshot " + op + " failed").Wrap(err)
}
