package job

import (
	"sync"

	"github.com/kiranshivaraju/mediapress/pkg/models"
)

// Registry is the ground truth for which jobs exist and what state they are
// in. It is the single shared mutable structure across concurrent request
// handling, so it exposes only atomic operations: callers never hold a live
// *models.Job outside the registry lock.
//
// State transitions happen exclusively inside Update closures. Two pollers
// racing to complete the same job both enter Update; the first flips the
// status and releases the process handle, the second observes a terminal
// status and leaves the record alone.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*models.Job)}
}

// Create inserts a new job record. Returns ErrExists if the id collides with
// a live job.
func (r *Registry) Create(j *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[j.ID]; ok {
		return ErrExists
	}
	copied := *j
	r.jobs[j.ID] = &copied
	return nil
}

// Snapshot returns a copy of the job record, or false if the id is unknown.
// The copy shares the Process handle; everything else is detached.
func (r *Registry) Snapshot(id string) (models.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	return *j, true
}

// Update runs fn against the live record under the registry lock. Returns
// ErrNotFound if the id is unknown. fn must not block: file and process I/O
// belong outside the lock, with the decision re-validated inside fn.
func (r *Registry) Update(id string, fn func(*models.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	fn(j)
	return nil
}

// Remove deletes the record and returns its final copy. Returns false if the
// id is unknown.
func (r *Registry) Remove(id string) (models.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	delete(r.jobs, id)
	return *j, true
}

// Len reports the number of live jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
