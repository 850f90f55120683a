package service

// Service is a long-lived subsystem of the ambient host: the audio engine,
// the HTTP control surface, the terminal console
//
// Lifecycle:
//  1. Construction
//  2. Init(args...) - shared dependencies handed over by the host
//  3. Start() - launch background goroutines
//  4. Stop() - halt goroutines, release devices and listeners
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init and Start before this one
	Dependencies() []string

	// Init configures the service; unknown args are ignored
	Init(args ...any) error

	// Start begins operation after every service has initialized
	Start() error

	// Stop halts operation; it must be idempotent
	Stop() error
}
