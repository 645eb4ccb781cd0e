// Package app wires the CampusPulse server together and manages its
// lifecycle.
//
// New builds, in order: OpenTelemetry providers, the dataset store with its
// metrics and tracer, the survey and health services, the chi router with
// its middleware chain and the HTTP server. NewApplication does the same
// after loading configuration and initializing the global logger.
//
// Serve runs the server and, when configured, loads the initial dataset in
// parallel; a failing remote source falls back to the embedded survey. When
// the context ends the server is shut down gracefully and telemetry is
// flushed. Run wraps Serve with signal handling for SIGINT and SIGTERM.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
