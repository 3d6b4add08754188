// Package inmem provides a process-local ExecutionRepository backed by a
// plain map. It is the default store for liposerver: executions don't
// survive a restart, but nothing needs to be provisioned to run it.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hnkNkm/Lipona/server/dao"
)

// ExecutionsRepository is a mutex-guarded, in-memory dao.ExecutionRepository.
type ExecutionsRepository struct {
	mu   sync.Mutex
	runs map[uuid.UUID]dao.Execution
}

// NewExecutionsRepository returns an empty repository.
func NewExecutionsRepository() *ExecutionsRepository {
	return &ExecutionsRepository{runs: make(map[uuid.UUID]dao.Execution)}
}

func (r *ExecutionsRepository) Create(ctx context.Context, exec dao.Execution) (dao.Execution, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Execution{}, err
	}
	exec.ID = newUUID
	exec.Created = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[exec.ID] = exec

	return exec, nil
}

func (r *ExecutionsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exec, ok := r.runs[id]
	if !ok {
		return dao.Execution{}, dao.ErrNotFound
	}
	return exec, nil
}

func (r *ExecutionsRepository) Close() error { return nil }
