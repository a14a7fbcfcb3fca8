// internal/tasks/registry.go
package tasks

import (
	"log"
	"sync"
)

// Registry supervises background units of work keyed by an id (here: the
// broadcast id). Unlike a bare `go func()`, a registered task can be joined
// and inspected, and a panic inside it is logged instead of killing the
// process silently.
type Registry struct {
	mu      sync.Mutex
	running map[string]chan struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		running: make(map[string]chan struct{}),
	}
}

// Go starts fn in its own goroutine registered under id. The previous task
// under the same id, if any, is simply forgotten; ids are unique per
// broadcast so this does not happen in practice.
func (r *Registry) Go(id string, fn func()) {
	done := make(chan struct{})

	r.mu.Lock()
	r.running[id] = done
	r.mu.Unlock()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("⚠️ background task %s panicked: %v\n", id, rec)
			}
			r.mu.Lock()
			delete(r.running, id)
			r.mu.Unlock()
			close(done)
		}()
		fn()
	}()
}

// Wait blocks until the task registered under id finishes. Waiting on an
// unknown (or already finished) id returns immediately.
func (r *Registry) Wait(id string) {
	r.mu.Lock()
	done, ok := r.running[id]
	r.mu.Unlock()

	if ok {
		<-done
	}
}

// Running reports whether a task is currently registered under id.
func (r *Registry) Running(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[id]
	return ok
}
