// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/kont"
)

// Action is the effect type of close actions and releases.
type Action = kont.Eff[struct{}]

// nop is the close action of states that hold nothing.
func nop() Action {
	return kont.Pure(struct{}{})
}

// delay defers construction of an effect until evaluation reaches it.
func delay[A any](f func() kont.Eff[A]) kont.Eff[A] {
	return kont.Bind(kont.Pure(struct{}{}), func(struct{}) kont.Eff[A] {
		return f()
	})
}

// Source is a lazy pull-based producer of values of type A.
//
// A source is one of [Closed], [Open] or [PendingSource]. Closed is strictly
// terminal. Open holds exactly one value, the continuation for more, and the
// action to run if the consumer abandons the stream at this node. A
// PendingSource must have its stored step evaluated to obtain the next
// concrete state.
type Source[A any] interface {
	source(A)
}

// Closed is the terminal source state: no more values.
type Closed[A any] struct{}

func (Closed[A]) source(A) {}

// Open holds one value available now.
//
// Close runs if the consumer abandons the stream here, before pulling Next.
// It is safe to invoke even if Next is never reached.
type Open[A any] struct {
	Value A
	Next  Source[A]
	Close Action
}

func (Open[A]) source(A) {}

// PendingSource is a suspension point: the stored step must be evaluated
// to obtain the next concrete source state.
type PendingSource[A any] struct {
	Step kont.Eff[Source[A]]
}

func (PendingSource[A]) source(A) {}

// pureSource fixes the interface type of a concrete source for kont.Pure.
func pureSource[A any](s Source[A]) kont.Eff[Source[A]] {
	return kont.Pure(s)
}

// SourceClose abandons a source, releasing whatever the current state holds.
//
// Closed is a no-op. Open runs its stored close action. A pending source is
// forced first and the resulting state is closed; builders encode their
// release inside the step, so the transient forcing is what makes the
// close-only path of [SourceIO] and [ConduitIO] still run its flush.
// At most one release results per held resource.
func SourceClose[A any](s Source[A]) Action {
	switch v := s.(type) {
	case Open[A]:
		return v.Close
	case PendingSource[A]:
		return kont.Bind(v.Step, func(next Source[A]) Action {
			return SourceClose(next)
		})
	default:
		return nop()
	}
}

// openAll emits values in order as a chain of Open nodes sharing one close
// action, ending in Closed.
func openAll[A any](values []A, close Action) Source[A] {
	if len(values) == 0 {
		return Closed[A]{}
	}
	return Open[A]{
		Value: values[0],
		Next:  openAll(values[1:], close),
		Close: close,
	}
}

// Pulled is the result of one producing step: a value, or end of stream
// when Ok is false.
type Pulled[A any] struct {
	Value A
	Ok    bool
}

// SourcePull is the result of one stateful producing step: a value plus the
// state for the next pull, or end of stream when Open is false.
type SourcePull[S, A any] struct {
	State S
	Value A
	Open  bool
}

// SourceState builds a source from an initial state and a state-threading
// pull step. Each pull receives exactly the state returned by the previous
// pull; the builder performs no resource management.
func SourceState[S, A any](initial S, pull func(S) kont.Eff[SourcePull[S, A]]) Source[A] {
	var src func(S) Source[A]
	src = func(state S) Source[A] {
		return PendingSource[A]{Step: kont.Map(pull(state), func(r SourcePull[S, A]) Source[A] {
			if !r.Open {
				return Closed[A]{}
			}
			return Open[A]{Value: r.Value, Next: src(r.State), Close: nop()}
		})}
	}
	return src(initial)
}

// SourceIO builds a source around one effectful resource per session.
//
// The resource is acquired lazily, on the first pull, and reused across
// subsequent pulls. It is released exactly once: when pull reports end of
// stream, or when the consumer abandons the source early. Release is
// enforced by a [Guard], so a failing pull still owes at most one release
// (collected by [ExecIO] on abort).
func SourceIO[R, A any](alloc kont.Eff[R], cleanup func(R) Action, pull func(R) kont.Eff[Pulled[A]]) Source[A] {
	return PendingSource[A]{Step: kont.Bind(acquireGuard(alloc, cleanup), func(s guarded[R]) kont.Eff[Source[A]] {
		return sourceIOPull(s.resource, s.guard, pull)
	})}
}

func sourceIOPull[R, A any](r R, g *Guard, pull func(R) kont.Eff[Pulled[A]]) kont.Eff[Source[A]] {
	return kont.Bind(pull(r), func(p Pulled[A]) kont.Eff[Source[A]] {
		if !p.Ok {
			return kont.Then(g.Release(), pureSource[A](Closed[A]{}))
		}
		next := PendingSource[A]{Step: sourceIOPull(r, g, pull)}
		return pureSource[A](Open[A]{Value: p.Value, Next: next, Close: g.Release()})
	})
}
