// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
)

// Guard wraps a release action behind an idempotence counter: the action
// runs the first time [Guard.Release] is evaluated and never again,
// regardless of which exit path got there first. Release is enforced by
// the guard itself, not by caller discipline.
type Guard struct {
	releases atomix.Uint32
	action   Action
	serial   Serial
}

// NewGuard creates a guard for the given release action.
func NewGuard(action Action) *Guard {
	return &Guard{action: action, serial: nextSerial()}
}

// Release returns the effect that runs the wrapped action at most once.
// The decision is taken when the effect is evaluated, not when it is built.
func (g *Guard) Release() Action {
	return delay(func() Action {
		if g.releases.Add(1) != 1 {
			return nop()
		}
		return g.action
	})
}

// Released reports whether the guard has already fired.
func (g *Guard) Released() bool {
	return g.releases.Add(0) != 0
}

// Serial returns the session serial assigned to this guard.
func (g *Guard) Serial() Serial {
	return g.serial
}

// guarded pairs a live resource with its release guard. Ownership moves
// forward through continuation closures; only one transition is ever in
// flight, so the resource is never aliased across active transitions.
type guarded[R any] struct {
	resource R
	guard    *Guard
}

// acquireGuard allocates the resource and registers its guard with the
// executing scope via a trackGuard operation, so a step failing later in
// the session still owes exactly one release.
func acquireGuard[R any](alloc kont.Eff[R], cleanup func(R) Action) kont.Eff[guarded[R]] {
	return kont.Bind(alloc, func(r R) kont.Eff[guarded[R]] {
		g := NewGuard(cleanup(r))
		return kont.Then(kont.Perform(trackGuard{guard: g}), kont.Pure(guarded[R]{resource: r, guard: g}))
	})
}

// IOResult is the outcome of one resource-scoped conduit push: either
// [IOProducing] to continue on the same resource, or [IOFinished].
type IOResult[I, O any] interface {
	ioResult(I, O)
}

// IOProducing flushes Output in order, then re-enters NeedInput on the
// same resource.
type IOProducing[I, O any] struct {
	Output []O
}

func (IOProducing[I, O]) ioResult(I, O) {}

// IOFinished releases the resource, flushes Output in order, then finishes
// with Leftover.
type IOFinished[I, O any] struct {
	Leftover Leftover[I]
	Output   []O
}

func (IOFinished[I, O]) ioResult(I, O) {}

// pureIOResult fixes the interface type of a concrete result for kont.Pure.
func pureIOResult[I, O any](r IOResult[I, O]) kont.Eff[IOResult[I, O]] {
	return kont.Pure(r)
}

// ConduitIO builds a conduit around one effectful resource per session.
//
// The resource is acquired lazily, when the first input arrives, and reused
// across subsequent inputs through the continuation closures. It is
// released exactly once: immediately when push reports [IOFinished], or
// when the conduit is closed early without having finished.
//
// Closing the conduit before any input ever arrived still acquires a
// resource transiently, purely to run close for its flush output, then
// releases it immediately. The close-only path thus costs an
// acquire/release pair that is otherwise unused; this is deliberate, so
// that close-only sessions can still emit output.
func ConduitIO[R, I, O any](alloc kont.Eff[R], cleanup func(R) Action, push func(R, I) kont.Eff[IOResult[I, O]], close func(R) kont.Eff[[]O]) Conduit[I, O] {
	var resume func(r R, g *Guard) Conduit[I, O]

	step := func(r R, g *Guard, input I) kont.Eff[Conduit[I, O]] {
		return kont.Bind(push(r, input), func(res IOResult[I, O]) kont.Eff[Conduit[I, O]] {
			switch v := res.(type) {
			case IOProducing[I, O]:
				return pureConduit[I, O](HaveMore(resume(r, g), g.Release(), v.Output))
			case IOFinished[I, O]:
				next := HaveMore[I, O](Finished[I, O]{Leftover: v.Leftover}, nop(), v.Output)
				return kont.Then(g.Release(), pureConduit[I, O](next))
			}
			panic("pull: unknown io result")
		})
	}

	flush := func(r R, g *Guard) Source[O] {
		return PendingSource[O]{Step: kont.Bind(close(r), func(outputs []O) kont.Eff[Source[O]] {
			return kont.Then(g.Release(), pureSource[O](openAll(outputs, g.Release())))
		})}
	}

	resume = func(r R, g *Guard) Conduit[I, O] {
		return NeedInput[I, O]{
			Push: func(input I) Conduit[I, O] {
				return PendingConduit[I, O]{Step: step(r, g, input), Close: g.Release()}
			},
			Close: flush(r, g),
		}
	}

	return NeedInput[I, O]{
		Push: func(input I) Conduit[I, O] {
			return PendingConduit[I, O]{
				Step: kont.Bind(acquireGuard(alloc, cleanup), func(s guarded[R]) kont.Eff[Conduit[I, O]] {
					return step(s.resource, s.guard, input)
				}),
				Close: nop(),
			}
		},
		Close: PendingSource[O]{Step: kont.Bind(acquireGuard(alloc, cleanup), func(s guarded[R]) kont.Eff[Source[O]] {
			return kont.Bind(close(s.resource), func(outputs []O) kont.Eff[Source[O]] {
				return kont.Then(s.guard.Release(), pureSource[O](openAll(outputs, nop())))
			})
		})},
	}
}
