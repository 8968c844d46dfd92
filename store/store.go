// Package store provides the type-keyed container shared by every unit of
// work during an application run. Values live in three disjoint namespaces:
// states (granular, independently addressable values), resources (larger
// singleton values), and emitters (one event dispatcher per event type).
//
// Each namespace is guarded by its own reader/writer lock. A caller holds
// either one exclusive mutation scope into a namespace or any number of
// concurrent read scopes, never both. Accessors block until the lock is
// free; the contract is enforced at runtime, not by the type system.
package store

import (
	"fmt"
	"reflect"
	"sync"
)

// Namespace identifies one of the store's three value categories.
type Namespace string

const (
	NamespaceStates    Namespace = "states"
	NamespaceResources Namespace = "resources"
	NamespaceEmitters  Namespace = "emitters"
)

type namespace struct {
	mu      sync.RWMutex
	entries map[reflect.Type]any
}

func (ns *namespace) set(key reflect.Type, value any) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if ns.entries == nil {
		ns.entries = map[reflect.Type]any{}
	}
	ns.entries[key] = value
}

func (ns *namespace) get(key reflect.Type) (any, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	value, ok := ns.entries[key]
	return value, ok
}

// Store is the shared component container. Entries are registered during
// setup or by units of work in any phase, and persist for the life of the
// session; there is no explicit destruction.
type Store struct {
	states    namespace
	resources namespace
	emitters  namespace
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// SetState inserts or replaces the state value of type T. Overwriting is
// idempotent; a handle copied out before replacement stays valid but no
// longer reflects the store.
func SetState[T any](s *Store, value T) {
	s.states.set(typeOf[T](), value)
}

// State returns a copy of the state value of type T, or a NotFoundError if
// none has been registered.
func State[T any](s *Store) (T, error) {
	return readEntry[T](&s.states, NamespaceStates)
}

// MutateState grants fn exclusive access to the state value of type T for
// the duration of the call. Every other accessor into the states namespace
// blocks until fn returns.
func MutateState[T any](s *Store, fn func(*T) error) error {
	return mutateEntry[T](&s.states, NamespaceStates, fn)
}

// SetResource inserts or replaces the resource value of type T.
func SetResource[T any](s *Store, value T) {
	s.resources.set(typeOf[T](), value)
}

// Resource returns a copy of the resource value of type T, or a
// NotFoundError if none has been registered.
func Resource[T any](s *Store) (T, error) {
	return readEntry[T](&s.resources, NamespaceResources)
}

// MutateResource grants fn exclusive access to the resource value of type T
// for the duration of the call.
func MutateResource[T any](s *Store, fn func(*T) error) error {
	return mutateEntry[T](&s.resources, NamespaceResources, fn)
}

func readEntry[T any](ns *namespace, name Namespace) (T, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	value, ok := ns.entries[typeOf[T]()]
	if !ok {
		var zero T
		return zero, &NotFoundError{Namespace: name, Type: typeOf[T]().String()}
	}
	return value.(T), nil
}

func mutateEntry[T any](ns *namespace, name Namespace, fn func(*T) error) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	key := typeOf[T]()
	value, ok := ns.entries[key]
	if !ok {
		return &NotFoundError{Namespace: name, Type: key.String()}
	}
	typed := value.(T)
	if err := fn(&typed); err != nil {
		return err
	}
	ns.entries[key] = typed
	return nil
}

// NotFoundError is returned by accessors when no value of the requested
// type has been registered in the namespace.
type NotFoundError struct {
	Namespace Namespace
	Type      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: no %s entry registered for type %s", e.Namespace, e.Type)
}

// TypeMismatchError is returned when an emitter is registered for an event
// type with a different return value parameter than the one requested.
type TypeMismatchError struct {
	Type string
	Want string
	Have string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("store: emitter for %s holds %s, not %s", e.Type, e.Have, e.Want)
}
