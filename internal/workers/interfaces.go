// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
// Run starts the worker and is expected to spawn its goroutine internally,
// returning promptly; the worker stops when ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}
