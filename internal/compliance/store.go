package compliance

import (
	"sync/atomic"

	"github.com/patuh/patuh/internal/models"
)

// Store holds the active Engine. Swaps replace the whole snapshot, so a
// caller that takes Engine() once per request sees one consistent version.
type Store struct {
	current atomic.Pointer[Engine]
}

// NewStore with an initial engine
func NewStore(e *Engine) *Store {
	s := &Store{}
	s.current.Store(e)
	return s
}

// Engine returns the active snapshot
func (s *Store) Engine() *Engine {
	return s.current.Load()
}

// Swap compiles c, makes it active and returns the engine it replaced.
// On error the previous engine stays active.
func (s *Store) Swap(c *models.Catalog, opts ...Option) (*Engine, error) {
	e, err := New(c, opts...)
	if err != nil {
		return nil, err
	}
	return s.current.Swap(e), nil
}
