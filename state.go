// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/kont"
)

// StateResult is the outcome of one stateful conduit push: either
// [StateProducing] to continue with a new state, or [StateFinished].
type StateResult[S, I, O any] interface {
	stateResult(S, I, O)
}

// StateProducing flushes Output in order, then re-enters NeedInput with
// State.
type StateProducing[S, I, O any] struct {
	State  S
	Output []O
}

func (StateProducing[S, I, O]) stateResult(S, I, O) {}

// StateFinished flushes Output in order, then finishes with Leftover.
type StateFinished[S, I, O any] struct {
	Leftover Leftover[I]
	Output   []O
}

func (StateFinished[S, I, O]) stateResult(S, I, O) {}

// pureStateResult fixes the interface type of a concrete result for kont.Pure.
func pureStateResult[S, I, O any](r StateResult[S, I, O]) kont.Eff[StateResult[S, I, O]] {
	return kont.Pure(r)
}

// ConduitState builds a conduit from an initial state and a state-threading
// push step. Each push receives exactly the state returned by the previous
// push; state is never implicitly retained. On close, the close step runs
// on the current state and its result is flushed as a final output burst.
// The builder performs no resource management; use [ConduitIO] when an
// external resource lifecycle is involved.
func ConduitState[S, I, O any](initial S, push func(S, I) kont.Eff[StateResult[S, I, O]], close func(S) kont.Eff[[]O]) Conduit[I, O] {
	var need func(S) Conduit[I, O]

	step := func(state S, input I) kont.Eff[Conduit[I, O]] {
		return kont.Map(push(state, input), func(res StateResult[S, I, O]) Conduit[I, O] {
			switch r := res.(type) {
			case StateProducing[S, I, O]:
				return HaveMore(need(r.State), nop(), r.Output)
			case StateFinished[S, I, O]:
				return HaveMore[I, O](Finished[I, O]{Leftover: r.Leftover}, nop(), r.Output)
			}
			panic("pull: unknown state result")
		})
	}

	need = func(state S) Conduit[I, O] {
		return NeedInput[I, O]{
			Push: func(input I) Conduit[I, O] {
				return PendingConduit[I, O]{Step: step(state, input), Close: nop()}
			},
			Close: flushSource(close(state)),
		}
	}

	return need(initial)
}

// flushSource turns a close step producing a final output burst into the
// source that emits the burst and closes.
func flushSource[O any](flush kont.Eff[[]O]) Source[O] {
	return PendingSource[O]{Step: kont.Map(flush, func(outputs []O) Source[O] {
		return openAll(outputs, nop())
	})}
}
