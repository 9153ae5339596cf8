// Package jsonview projects trees to JSON and patch lists to RFC 6902
// JSON Patch documents, so any JSON Patch client can follow a session.
//
//	doc, _ := jsonview.Document(prev)
//	ops, _ := jsonview.Patches(vdom.Diff(prev, next))
//	// ops applied to doc yield jsonview.Document(next)
package jsonview
