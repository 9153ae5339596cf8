// Package errors provides structured, actionable error messages for vtree.
//
// Every error carries a code that maps to a registered template with a short
// message, a longer explanation and an optional hint. Errors raised while
// reading tree documents can carry a file location; errors raised by the
// live tree carry the address of the offending node.
//
// # Error Categories
//
//   - runtime: live tree drift (address not found, wrong node kind)
//   - protocol: wire codec failures
//   - config: vtree.json problems
//   - document: tree document parse and shape errors
//   - storage: snapshot store failures
//   - cli: command usage
//
// # Usage
//
//	err := errors.New("E101").WithPath(path)
//	fmt.Fprint(os.Stderr, err.Format())
//	// Output:
//	// ERROR E101: Address not found
//	//
//	//   at /0/3
//	//
//	//   A patch addressed a node that does not exist in the live tree. ...
package errors
