// Package server streams session patches to clients over WebSocket.
//
// Each session gets a hub that owns its connections. A client connecting
// to /ws/{session} first receives a Snapshot frame with the whole tree,
// then a Patches frame for every render. Event frames sent by a client are
// dispatched to the session and the resulting patches are broadcast to
// every connection of that session, in sequence order.
//
// A client that reconnects with ?since=N is replayed the Patches frames it
// missed when the hub still holds them, and otherwise receives a Snapshot
// frame flagged FlagResync.
//
// The HTTP API next to the WebSocket endpoint:
//
//	GET    /ws/{session}              WebSocket upgrade
//	POST   /sessions/{session}/render re-render and broadcast
//	GET    /sessions/{session}/tree   JSON view of the current tree
//	DELETE /sessions/{session}        disconnect clients and close
//	GET    /metrics                   Prometheus metrics (Config.Gatherer)
//	GET    /healthz                   liveness
//
// Usage:
//
//	mgr := session.NewManager(newApp, session.ManagerConfig{})
//	srv := server.New(mgr, &server.Config{Address: ":7070"})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
