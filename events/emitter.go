package events

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

func typeName[E any]() string {
	return reflect.TypeOf((*E)(nil)).Elem().String()
}

// Next tells the emitter how to proceed after a subscriber returns.
// The zero value means "continue with the next subscriber".
type Next[R any] struct {
	flow  flow
	value R
}

type flow int

const (
	flowContinue flow = iota
	flowStop
	flowReturn
)

// Continue proceeds to the next subscriber in registration order.
func Continue[R any]() Next[R] {
	return Next[R]{flow: flowContinue}
}

// Stop ceases dispatch. Remaining subscribers are not invoked and Emit
// returns no value.
func Stop[R any]() Next[R] {
	return Next[R]{flow: flowStop}
}

// Return ceases dispatch and carries v out of Emit as its result value.
func Return[R any](v R) Next[R] {
	return Next[R]{flow: flowReturn, value: v}
}

// Subscriber handles one event instance. The event is passed by pointer so
// subscribers may mutate it in place; mutations are visible to every
// subscriber invoked afterwards during the same Emit call.
type Subscriber[E, R any] func(ctx context.Context, event *E) (Next[R], error)

type entry[E, R any] struct {
	id   uint64
	once bool
	fn   Subscriber[E, R]
}

// Emitter dispatches one event type to an ordered list of subscribers.
// Registration order is invocation order. Dispatch for a single Emit call is
// strictly sequential; only the subscriber registry itself is synchronized,
// so concurrent Emit calls (including reentrant ones made from inside a
// subscriber) never block each other's event data.
type Emitter[E, R any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []entry[E, R]
}

// NewEmitter returns an emitter with no subscribers.
func NewEmitter[E, R any]() *Emitter[E, R] {
	return &Emitter[E, R]{}
}

// On registers a persistent subscriber.
func (m *Emitter[E, R]) On(fn Subscriber[E, R]) *Emitter[E, R] {
	return m.subscribe(fn, false)
}

// Once registers a subscriber that is deregistered after the first Emit call
// that invokes it.
func (m *Emitter[E, R]) Once(fn Subscriber[E, R]) *Emitter[E, R] {
	return m.subscribe(fn, true)
}

// Subscribe registers fn, marking it run-once when once is true.
func (m *Emitter[E, R]) Subscribe(fn Subscriber[E, R], once bool) *Emitter[E, R] {
	return m.subscribe(fn, once)
}

func (m *Emitter[E, R]) subscribe(fn Subscriber[E, R], once bool) *Emitter[E, R] {
	if fn == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.entries = append(m.entries, entry[E, R]{id: m.nextID, once: once, fn: fn})
	return m
}

// Len reports the number of registered subscribers.
func (m *Emitter[E, R]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Emit invokes every subscriber sequentially in registration order, handing
// each exclusive access to the event instance. Dispatch halts early when a
// subscriber returns Stop, Return, or an error; an error is wrapped as a
// SubscriberError and propagated to the caller.
//
// Emit returns the final (possibly mutated) event and, when a subscriber
// returned Return, a pointer to the carried value. Run-once subscribers that
// were invoked during this call are removed afterwards in a compaction pass,
// never while the registry is being iterated.
func (m *Emitter[E, R]) Emit(ctx context.Context, event E) (E, *R, error) {
	m.mu.Lock()
	snapshot := make([]entry[E, R], len(m.entries))
	copy(snapshot, m.entries)
	m.mu.Unlock()

	var (
		result  *R
		invoked map[uint64]struct{}
		dispErr error
	)

	for _, sub := range snapshot {
		if sub.once {
			if invoked == nil {
				invoked = make(map[uint64]struct{})
			}
			invoked[sub.id] = struct{}{}
		}

		next, err := sub.fn(ctx, &event)
		if err != nil {
			dispErr = &SubscriberError{Event: typeName[E](), Err: err}
			break
		}
		if next.flow == flowStop {
			break
		}
		if next.flow == flowReturn {
			value := next.value
			result = &value
			break
		}
	}

	if len(invoked) > 0 {
		m.compact(invoked)
	}

	return event, result, dispErr
}

// compact removes the run-once subscribers that were invoked during a
// dispatch. Subscribers registered while the dispatch was running keep their
// position relative to one another.
func (m *Emitter[E, R]) compact(invoked map[uint64]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, sub := range m.entries {
		if _, ok := invoked[sub.id]; ok {
			continue
		}
		kept = append(kept, sub)
	}
	m.entries = kept
}

// SubscriberError reports a subscriber that returned a failure during Emit.
type SubscriberError struct {
	// Event is the name of the event type being dispatched.
	Event string
	// Err is the failure returned by the subscriber.
	Err error
}

func (e *SubscriberError) Error() string {
	return fmt.Sprintf("events: subscriber for %s failed: %v", e.Event, e.Err)
}

func (e *SubscriberError) Unwrap() error {
	return e.Err
}
