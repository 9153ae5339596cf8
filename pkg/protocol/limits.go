package protocol

import "errors"

// MaxNodeDepth limits the nesting depth of decoded trees and values so a
// hostile payload cannot exhaust the stack.
const MaxNodeDepth = 256

// ErrMaxDepthExceeded is returned when a decoded structure nests deeper
// than MaxNodeDepth.
var ErrMaxDepthExceeded = errors.New("protocol: maximum nesting depth exceeded")

// checkDepth is called on entry to every recursive decode.
func checkDepth(current, max int) error {
	if current > max {
		return ErrMaxDepthExceeded
	}
	return nil
}
