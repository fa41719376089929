// Package workers runs the client's background jobs. Today that is a single
// job: the periodic sync trigger. The Workers aggregate exists so additional
// jobs can be started uniformly from the client bootstrap.
package workers

// Worker is a background job startable from the client bootstrap. Run either
// blocks for the duration of the work or spawns goroutines internally and
// returns.
type Worker interface {
	Run()
}
