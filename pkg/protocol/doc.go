// Package protocol implements the binary wire format for trees, patches and
// listener events.
//
// It is used both on the wire between a server session and its clients and
// as the storage format for persisted snapshots.
//
// # Wire Format
//
// All messages are framed with a 6-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FramePatches (0x01): Server → Client patch batch
//   - FrameEvent (0x02): Client → Server listener dispatch
//   - FrameError (0x03): Error message
//   - FrameSnapshot (0x04): Server → Client full tree
//
// # Encoding
//
//   - Varint: Compact encoding for counts, indices and handle ids
//   - ZigZag: Signed integers encoded as unsigned varints
//   - Length-prefixed: Strings prefixed with varint length
//   - Big-endian: Fixed-width integers and IEEE 754 floats
//
// # Patches
//
// Each patch carries its op byte (the vdom.PatchOp value), the target path
// as a count followed by child indices, and an op-specific payload.
//
// Example ReplaceText at /1/0:
//
//	[Op: 0x01][Path: 0x02 0x01 0x00][Text: len-prefixed]
//
// # Security
//
// Decoders enforce allocation limits on strings, collection counts and
// nesting depth (MaxNodeDepth), so a hostile frame cannot force large
// allocations or deep recursion.
package protocol
