package position

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownController is returned when an identifier is not registered.
	ErrUnknownController = errors.New("position controller not registered")
	// errEmptyID is returned when registering without an identifier.
	errEmptyID = errors.New("position controller id is empty")
	// errDuplicateID is returned when an identifier is registered twice.
	errDuplicateID = errors.New("position controller already registered")
)

// Registry maps identifiers to position controllers.
type Registry struct {
	// controllers holds registered controllers by id.
	controllers map[string]Controller
	// mu protects controllers.
	mu sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		controllers: make(map[string]Controller),
	}
}

// Register binds id to c.
func (r *Registry) Register(id string, c Controller) error {
	if id == "" {
		return errEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.controllers[id]; ok {
		return fmt.Errorf("%w: %s", errDuplicateID, id)
	}

	r.controllers[id] = c

	return nil
}

// Resolve returns the controller bound to id.
//
//nolint:ireturn // Callers depend on the capability, not the model.
func (r *Registry) Resolve(id string) (Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.controllers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownController, id)
	}

	return c, nil
}
