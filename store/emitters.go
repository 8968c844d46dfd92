package store

import (
	"reflect"

	"github.com/groundworkdev/groundwork/events"
)

// RegisterEmitter creates an emitter for event type E with return type R,
// registers it in the emitters namespace, and returns it. A previously
// registered emitter for E is replaced.
func RegisterEmitter[E, R any](s *Store) *events.Emitter[E, R] {
	emitter := events.NewEmitter[E, R]()
	SetEmitter(s, emitter)
	return emitter
}

// SetEmitter inserts or replaces the emitter for event type E.
func SetEmitter[E, R any](s *Store, emitter *events.Emitter[E, R]) {
	s.emitters.set(typeOf[E](), emitter)
}

// EmitterFor returns the emitter registered for event type E. It fails with
// a NotFoundError when no emitter exists, and a TypeMismatchError when the
// registered emitter carries a different return value type.
func EmitterFor[E, R any](s *Store) (*events.Emitter[E, R], error) {
	key := typeOf[E]()
	value, ok := s.emitters.get(key)
	if !ok {
		return nil, &NotFoundError{Namespace: NamespaceEmitters, Type: key.String()}
	}
	emitter, ok := value.(*events.Emitter[E, R])
	if !ok {
		return nil, &TypeMismatchError{
			Type: key.String(),
			Want: typeOf[*events.Emitter[E, R]]().String(),
			Have: reflect.TypeOf(value).String(),
		}
	}
	return emitter, nil
}
