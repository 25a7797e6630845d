// Package server serves a weft app over HTTP and keeps it live over a
// websocket.
//
// GET / renders the app on a throwaway memory host and returns the HTML
// page. The page loads a small client script that connects back and
// opens a Session. Each session renders the app into its own memory host
// through a protocol.Stream, on a sched.Loop goroutine:
//
//	client                          server
//	  |  <- Patches (FlagReset) --  |  first commit
//	  |  -- Event{node, "click"} -> |  listener runs on the loop
//	  |  <- Patches --------------  |  next commit
//
// The first frame resets the client's mount point, so the server-rendered
// markup is replaced by nodes the session knows the IDs of.
//
// Usage:
//
//	srv := server.New(func() *vdom.VNode { return vdom.Comp(App) }, server.DefaultConfig())
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Setting Config.Registry exposes Prometheus metrics, and every session
// reports render spans to Config.TracerProvider.
package server
