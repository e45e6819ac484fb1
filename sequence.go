// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/kont"
)

// SeqResult is the terminal response of one sequenced sink run: [SeqEmit]
// to restart with a new state, [SeqStop] to finish the conduit, or
// [SeqStart] to hand control to a conduit.
type SeqResult[S, I, O any] interface {
	seqResult(S, I, O)
}

// SeqEmit flushes Output, then restarts the sink with State. Leftover the
// finished sink reported is fed to the fresh instance before any further
// upstream input; no input is dropped or requested twice.
type SeqEmit[S, I, O any] struct {
	State  S
	Output []O
}

func (SeqEmit[S, I, O]) seqResult(S, I, O) {}

// SeqStop finishes the conduit, forwarding any leftover.
type SeqStop[S, I, O any] struct{}

func (SeqStop[S, I, O]) seqResult(S, I, O) {}

// SeqStart transfers control wholly to Conduit. Leftover is pushed into it
// immediately; handing over a conduit that is currently mid-output is
// unsupported and panics. Known limitation, kept deliberate rather than
// silently reordered.
type SeqStart[S, I, O any] struct {
	Conduit Conduit[I, O]
}

func (SeqStart[S, I, O]) seqResult(S, I, O) {}

// SequenceSink replays a one-shot sink protocol to drive a long-lived
// conduit: each incoming input feeds the current sink instance, and the
// instance's terminal [SeqResult] decides whether to restart, stop, or
// hand over.
//
// A sink driven this way must never report leftover without having been
// pushed an input since its last restart; that violates the leftover
// discipline and panics.
func SequenceSink[S, I, O any](initial S, builder func(S) Sink[I, SeqResult[S, I, O]]) Conduit[I, O] {
	return seqDrive(builder, builder(initial), false)
}

// Sequence replays sink forever, emitting each run's result as one output.
//
// Hazard, by contract: a sink that can finish without ever being pushed an
// input yields a conduit that emits forever when driven. Callers own
// termination.
func Sequence[I, O any](sink Sink[I, O]) Conduit[I, O] {
	return SequenceSink(struct{}{}, func(struct{}) Sink[I, SeqResult[struct{}, I, O]] {
		return mapSink(sink, func(result O) SeqResult[struct{}, I, O] {
			return SeqEmit[struct{}, I, O]{State: struct{}{}, Output: []O{result}}
		})
	})
}

// seqDrive advances the current sink instance. pushed records whether this
// instance has been pushed input since its last restart.
func seqDrive[S, I, O any](builder func(S) Sink[I, SeqResult[S, I, O]], sink Sink[I, SeqResult[S, I, O]], pushed bool) Conduit[I, O] {
	switch v := sink.(type) {
	case Done[I, SeqResult[S, I, O]]:
		if v.Leftover.Ok && !pushed {
			panic("pull: sequenced sink reported leftover without input")
		}
		return seqRespond(builder, v.Leftover, v.Result)
	case PendingSink[I, SeqResult[S, I, O]]:
		return PendingConduit[I, O]{
			Step: kont.Map(v.Step, func(next Sink[I, SeqResult[S, I, O]]) Conduit[I, O] {
				return seqDrive(builder, next, pushed)
			}),
			Close: nop(),
		}
	case Processing[I, SeqResult[S, I, O]]:
		return NeedInput[I, O]{
			Push: func(input I) Conduit[I, O] {
				return seqDrive(builder, v.Push(input), true)
			},
			Close: seqFlush(v.Close),
		}
	}
	panic("pull: unknown sink state")
}

// seqFeed pushes leftover input into a fresh sink instance.
func seqFeed[S, I, O any](builder func(S) Sink[I, SeqResult[S, I, O]], sink Sink[I, SeqResult[S, I, O]], input I) Conduit[I, O] {
	switch v := sink.(type) {
	case Processing[I, SeqResult[S, I, O]]:
		return seqDrive(builder, v.Push(input), true)
	case PendingSink[I, SeqResult[S, I, O]]:
		return PendingConduit[I, O]{
			Step: kont.Map(v.Step, func(next Sink[I, SeqResult[S, I, O]]) Conduit[I, O] {
				return seqFeed(builder, next, input)
			}),
			Close: nop(),
		}
	case Done[I, SeqResult[S, I, O]]:
		// The fresh instance finished before accepting the pending input;
		// the input stays leftover for the next response round.
		if v.Leftover.Ok {
			panic("pull: sequenced sink reported leftover without input")
		}
		return seqRespond(builder, Unconsumed(input), v.Result)
	}
	panic("pull: unknown sink state")
}

// seqRespond handles a finished sink instance's response.
func seqRespond[S, I, O any](builder func(S) Sink[I, SeqResult[S, I, O]], leftover Leftover[I], res SeqResult[S, I, O]) Conduit[I, O] {
	switch r := res.(type) {
	case SeqEmit[S, I, O]:
		state := r.State
		// The restart is deferred behind a suspension: an input-less sink
		// restarts without any upstream demand, which must not recurse at
		// construction time (the documented unbounded behavior of Sequence).
		next := PendingConduit[I, O]{
			Step: delay(func() kont.Eff[Conduit[I, O]] {
				fresh := builder(state)
				if leftover.Ok {
					return pureConduit[I, O](seqFeed(builder, fresh, leftover.Value))
				}
				return pureConduit[I, O](seqDrive(builder, fresh, false))
			}),
			Close: nop(),
		}
		return HaveMore[I, O](next, nop(), r.Output)
	case SeqStop[S, I, O]:
		return Finished[I, O]{Leftover: leftover}
	case SeqStart[S, I, O]:
		if leftover.Ok {
			return seqHandOver(leftover.Value, r.Conduit)
		}
		return r.Conduit
	}
	panic("pull: unknown sequence result")
}

// seqHandOver pushes the pending leftover into the conduit control is
// transferring to.
func seqHandOver[I, O any](input I, c Conduit[I, O]) Conduit[I, O] {
	switch v := c.(type) {
	case NeedInput[I, O]:
		return v.Push(input)
	case Finished[I, O]:
		if v.Leftover.Ok {
			panic("pull: conduit handed leftover while already holding leftover")
		}
		return Finished[I, O]{Leftover: Unconsumed(input)}
	case PendingConduit[I, O]:
		return PendingConduit[I, O]{
			Step: kont.Map(v.Step, func(next Conduit[I, O]) Conduit[I, O] {
				return seqHandOver(input, next)
			}),
			Close: v.Close,
		}
	case HaveOutput[I, O]:
		panic("pull: cannot transfer leftover into a conduit mid-output")
	}
	panic("pull: unknown conduit state")
}

// seqFlush closes the current sink instance when the conduit is closed
// mid-run, turning its terminal response into the close-path source.
func seqFlush[S, I, O any](closeEff kont.Eff[SeqResult[S, I, O]]) Source[O] {
	return PendingSource[O]{Step: kont.Bind(closeEff, func(res SeqResult[S, I, O]) kont.Eff[Source[O]] {
		switch r := res.(type) {
		case SeqEmit[S, I, O]:
			return pureSource[O](openAll(r.Output, nop()))
		case SeqStop[S, I, O]:
			return pureSource[O](Closed[O]{})
		case SeqStart[S, I, O]:
			return kont.Then(ConduitClose(r.Conduit), pureSource[O](Closed[O]{}))
		}
		panic("pull: unknown sequence result")
	})}
}
