// Package dao provides data access objects for the liposerver execution
// history: a persisted record of a script that was run, what it printed,
// and how it ended.
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by a repository when no record matches the
// requested ID.
var ErrNotFound = errors.New("the requested execution was not found")

// Execution is one persisted run of a Lipona program.
type Execution struct {
	ID      uuid.UUID `json:"id"`
	Source  string    `json:"source"`
	Stdout  string    `json:"stdout"`
	Result  string    `json:"result"` // display form of the returned value; empty on failure
	ErrMsg  string    `json:"err_msg,omitempty"` // non-empty if parsing or running failed
	Created time.Time `json:"created"`
}

// ExecutionRepository stores and retrieves Execution records. Implementations
// live in inmem (process-local, the default) and sqlite (a persistent
// single-file store), selected by server configuration.
type ExecutionRepository interface {
	Create(ctx context.Context, exec Execution) (Execution, error)
	GetByID(ctx context.Context, id uuid.UUID) (Execution, error)
	Close() error
}
