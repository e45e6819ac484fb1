// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/kont"
)

// Leftover carries input that was pushed to a state but not consumed by it.
// The zero value means no leftover.
//
// A terminal state may carry leftover only if the value was actually pushed
// to reach that state; reporting leftover from a state that was never pushed
// any input is a protocol violation.
type Leftover[I any] struct {
	Value I
	Ok    bool
}

// Unconsumed wraps input that must be forwarded rather than dropped.
func Unconsumed[I any](v I) Leftover[I] {
	return Leftover[I]{Value: v, Ok: true}
}

// Sink is a consumer of values of type I producing a result of type O.
//
// A sink is one of [Processing], [Done] or [PendingSink]. Done is strictly
// terminal.
type Sink[I, O any] interface {
	sink(I, O)
}

// Processing wants more input. Push advances the sink with one value;
// Close finishes the sink without further input, producing its result.
type Processing[I, O any] struct {
	Push  func(I) Sink[I, O]
	Close kont.Eff[O]
}

func (Processing[I, O]) sink(I, O) {}

// Done is the terminal sink state: the result, plus any pushed input the
// sink did not consume.
type Done[I, O any] struct {
	Leftover Leftover[I]
	Result   O
}

func (Done[I, O]) sink(I, O) {}

// PendingSink is a suspension point: the stored step must be evaluated to
// obtain the next concrete sink state.
type PendingSink[I, O any] struct {
	Step kont.Eff[Sink[I, O]]
}

func (PendingSink[I, O]) sink(I, O) {}

// pureSink fixes the interface type of a concrete sink for kont.Pure.
func pureSink[I, O any](s Sink[I, O]) kont.Eff[Sink[I, O]] {
	return kont.Pure(s)
}

// mapSink rewrites the result of a sink, leaving its consumption protocol
// untouched.
func mapSink[I, A, B any](s Sink[I, A], f func(A) B) Sink[I, B] {
	switch v := s.(type) {
	case Done[I, A]:
		return Done[I, B]{Leftover: v.Leftover, Result: f(v.Result)}
	case Processing[I, A]:
		return Processing[I, B]{
			Push: func(input I) Sink[I, B] {
				return mapSink(v.Push(input), f)
			},
			Close: kont.Map(v.Close, f),
		}
	case PendingSink[I, A]:
		return PendingSink[I, B]{Step: kont.Map(v.Step, func(next Sink[I, A]) Sink[I, B] {
			return mapSink(next, f)
		})}
	}
	panic("pull: unknown sink state")
}

// SinkResult is the outcome of one stateful sink push: either
// [SinkProcessing] to continue with a new state, or [SinkDone].
type SinkResult[S, I, O any] interface {
	sinkResult(S, I, O)
}

// SinkProcessing continues consuming with the given state.
type SinkProcessing[S, I, O any] struct {
	State S
}

func (SinkProcessing[S, I, O]) sinkResult(S, I, O) {}

// SinkDone finishes the sink with a result and optional leftover input.
type SinkDone[S, I, O any] struct {
	Leftover Leftover[I]
	Result   O
}

func (SinkDone[S, I, O]) sinkResult(S, I, O) {}

// pureSinkResult fixes the interface type of a concrete result for kont.Pure.
func pureSinkResult[S, I, O any](r SinkResult[S, I, O]) kont.Eff[SinkResult[S, I, O]] {
	return kont.Pure(r)
}

// SinkState builds a sink from an initial state and a state-threading push
// step. Each push receives exactly the state returned by the previous push;
// close produces the result when the upstream ends first.
func SinkState[S, I, O any](initial S, push func(S, I) kont.Eff[SinkResult[S, I, O]], close func(S) kont.Eff[O]) Sink[I, O] {
	var proc func(S) Sink[I, O]
	proc = func(state S) Sink[I, O] {
		return Processing[I, O]{
			Push: func(input I) Sink[I, O] {
				return PendingSink[I, O]{Step: kont.Map(push(state, input), func(res SinkResult[S, I, O]) Sink[I, O] {
					switch r := res.(type) {
					case SinkProcessing[S, I, O]:
						return proc(r.State)
					case SinkDone[S, I, O]:
						return Done[I, O]{Leftover: r.Leftover, Result: r.Result}
					}
					panic("pull: unknown sink result")
				})}
			},
			Close: close(state),
		}
	}
	return proc(initial)
}

// CollectSink accumulates every pushed value and results in the slice.
func CollectSink[A any]() Sink[A, []A] {
	return SinkState(
		[]A(nil),
		func(acc []A, input A) kont.Eff[SinkResult[[]A, A, []A]] {
			return pureSinkResult[[]A, A, []A](SinkProcessing[[]A, A, []A]{State: append(acc, input)})
		},
		func(acc []A) kont.Eff[[]A] {
			return kont.Pure(acc)
		},
	)
}

// SinkIOResult is the outcome of one resource-scoped sink push: either
// [SinkIOProcessing] to continue, or [SinkIODone].
type SinkIOResult[I, O any] interface {
	sinkIOResult(I, O)
}

// SinkIOProcessing continues consuming on the same resource.
type SinkIOProcessing[I, O any] struct{}

func (SinkIOProcessing[I, O]) sinkIOResult(I, O) {}

// SinkIODone finishes the sink with a result and optional leftover input.
type SinkIODone[I, O any] struct {
	Leftover Leftover[I]
	Result   O
}

func (SinkIODone[I, O]) sinkIOResult(I, O) {}

// pureSinkIOResult fixes the interface type of a concrete result for kont.Pure.
func pureSinkIOResult[I, O any](r SinkIOResult[I, O]) kont.Eff[SinkIOResult[I, O]] {
	return kont.Pure(r)
}

// SinkIO builds a sink around one effectful resource per session.
//
// The resource is acquired lazily, on the first push, and reused across
// subsequent pushes. It is released exactly once: when push reports
// [SinkIODone], or on the close path. Closing before any input arrived
// still acquires the resource transiently to run close for its result,
// then releases it immediately.
func SinkIO[R, I, O any](alloc kont.Eff[R], cleanup func(R) Action, push func(R, I) kont.Eff[SinkIOResult[I, O]], close func(R) kont.Eff[O]) Sink[I, O] {
	var resume func(r R, g *Guard) Sink[I, O]

	step := func(r R, g *Guard, input I) kont.Eff[Sink[I, O]] {
		return kont.Bind(push(r, input), func(res SinkIOResult[I, O]) kont.Eff[Sink[I, O]] {
			switch v := res.(type) {
			case SinkIOProcessing[I, O]:
				return pureSink[I, O](resume(r, g))
			case SinkIODone[I, O]:
				return kont.Then(g.Release(), pureSink[I, O](Done[I, O]{Leftover: v.Leftover, Result: v.Result}))
			}
			panic("pull: unknown sink io result")
		})
	}

	finish := func(r R, g *Guard) kont.Eff[O] {
		return kont.Bind(close(r), func(result O) kont.Eff[O] {
			return kont.Then(g.Release(), kont.Pure(result))
		})
	}

	resume = func(r R, g *Guard) Sink[I, O] {
		return Processing[I, O]{
			Push: func(input I) Sink[I, O] {
				return PendingSink[I, O]{Step: step(r, g, input)}
			},
			Close: finish(r, g),
		}
	}

	return Processing[I, O]{
		Push: func(input I) Sink[I, O] {
			return PendingSink[I, O]{Step: kont.Bind(acquireGuard(alloc, cleanup), func(s guarded[R]) kont.Eff[Sink[I, O]] {
				return step(s.resource, s.guard, input)
			})}
		},
		Close: kont.Bind(acquireGuard(alloc, cleanup), func(s guarded[R]) kont.Eff[O] {
			return finish(s.resource, s.guard)
		}),
	}
}
