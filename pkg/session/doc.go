// Package session runs the reconciliation loop for connected clients.
//
// A Session holds the tree an App last rendered. Each Render asks the App
// for a new view, diffs it against the previous one and returns the patch
// batch as a sequenced protocol.PatchesFrame. Dispatch runs the listener a
// client event targets and renders again.
//
//	s, _ := session.Open(ctx, "s1", func(id string, reg *vdom.Registry) session.App {
//	    count := 0
//	    inc := reg.Register(func(vdom.Value) { count++ })
//	    return session.AppFunc(func() *vdom.Node {
//	        return vdom.Button(vdom.OnClick(inc), vdom.Textf("%d", count))
//	    })
//	})
//	frame, _ := s.Render(ctx) // Replace(/, <button>)
//
// Renders are counted in Prometheus collectors (see NewMetrics), traced
// as "vtree.render" spans and, with WithStore, persisted as snapshots.
package session
