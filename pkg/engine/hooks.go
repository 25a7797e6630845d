package engine

import "github.com/vango-dev/weft/pkg/vdom"

// Setter updates a state slot declared with UseState. A setter is stable
// across renders and must be called on the engine's goroutine. Calls on a
// setter whose component has been deleted are ignored.
type Setter[T any] struct {
	enqueue func(vdom.StateUpdate)
}

// Set replaces the value and requests a render.
func (s Setter[T]) Set(v T) {
	if s.enqueue == nil {
		return
	}
	s.enqueue(func(any) any { return v })
}

// Update queues fn to run against the latest value at the next evaluation.
// Queued updates are applied in the order they were issued.
func (s Setter[T]) Update(fn func(T) T) {
	if s.enqueue == nil || fn == nil {
		return
	}
	s.enqueue(func(prev any) any {
		p, _ := prev.(T)
		return fn(p)
	})
}

// UseState declares a state slot holding a T. initial is used only when the
// slot is created.
func UseState[T any](s vdom.Scope, initial T) (T, Setter[T]) {
	v, enqueue := s.State(func() any { return initial })
	val, _ := v.(T)
	return val, Setter[T]{enqueue: enqueue}
}

// UseStateFunc is UseState with a lazily computed initial value.
func UseStateFunc[T any](s vdom.Scope, initial func() T) (T, Setter[T]) {
	v, enqueue := s.State(func() any { return initial() })
	val, _ := v.(T)
	return val, Setter[T]{enqueue: enqueue}
}

// UseEffect declares an effect that runs after the commit that created it
// and again after any commit where one of deps changed. With no deps it
// runs once.
func UseEffect(s vdom.Scope, fn vdom.EffectFunc, deps ...any) {
	if deps == nil {
		deps = []any{}
	}
	s.Effect(fn, deps)
}

// UseEffectAlways declares an effect that runs after every commit.
func UseEffectAlways(s vdom.Scope, fn vdom.EffectFunc) {
	s.Effect(fn, nil)
}

// Ref is a mutable box that persists across renders. Writing Current does
// not request a render.
type Ref[T any] struct {
	Current T
}

// UseRef declares a state slot holding a *Ref[T].
func UseRef[T any](s vdom.Scope, initial T) *Ref[T] {
	v, _ := s.State(func() any { return &Ref[T]{Current: initial} })
	r, _ := v.(*Ref[T])
	return r
}
