// Package shutdown coordinates graceful termination of sessgate.
//
// A Handler collects named hooks and runs them in reverse registration
// order once the process receives SIGINT or SIGTERM, the parent context
// ends, or Trigger is called (for example after a listener fails).
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
