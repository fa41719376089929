package server

// Server is the lifecycle contract of the transport servers this package
// assembles.
//
// RunServer blocks until the process is signalled to stop; Shutdown drains
// in-flight requests and releases listeners.
type Server interface {
	// RunServer starts serving and blocks until the server stops.
	RunServer()

	// Shutdown gracefully stops the server.
	Shutdown()
}
