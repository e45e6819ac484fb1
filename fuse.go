// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/kont"
)

// Connect drives a source into a sink and resolves to the sink's result.
// Composition is synchronous and demand-driven: the sink's request for
// input is what advances the source. If the sink finishes while the source
// still holds values, the source is closed before the result is reported;
// sink leftover has nowhere to go at the top level and is discarded.
func Connect[A, B any](src Source[A], sink Sink[A, B]) kont.Eff[B] {
	switch s := sink.(type) {
	case Done[A, B]:
		return kont.Then(SourceClose(src), kont.Pure(s.Result))
	case PendingSink[A, B]:
		return kont.Bind(s.Step, func(next Sink[A, B]) kont.Eff[B] {
			return Connect(src, next)
		})
	case Processing[A, B]:
		switch v := src.(type) {
		case Closed[A]:
			return s.Close
		case Open[A]:
			return Connect(v.Next, s.Push(v.Value))
		case PendingSource[A]:
			return kont.Bind(v.Step, func(next Source[A]) kont.Eff[B] {
				return Connect(next, sink)
			})
		}
	}
	panic("pull: unknown sink state")
}

// Run connects a source to a sink and evaluates the pipeline with [ExecIO].
func Run[A, B any](src Source[A], sink Sink[A, B]) (B, error) {
	return ExecIO(Connect(src, sink))
}

// SourceConduit fuses a source with a conduit, yielding the source of the
// conduit's output. Closing the fused source closes both sides, upstream
// first, each at most once.
func SourceConduit[A, B any](src Source[A], c Conduit[A, B]) Source[B] {
	switch t := c.(type) {
	case Finished[A, B]:
		if _, closed := src.(Closed[A]); closed {
			return Closed[B]{}
		}
		return PendingSource[B]{Step: kont.Then(SourceClose(src), pureSource[B](Closed[B]{}))}
	case HaveOutput[A, B]:
		return Open[B]{
			Value: t.Value,
			Next:  SourceConduit(src, t.Next),
			Close: kont.Then(SourceClose(src), t.Close),
		}
	case PendingConduit[A, B]:
		return PendingSource[B]{Step: kont.Map(t.Step, func(next Conduit[A, B]) Source[B] {
			return SourceConduit(src, next)
		})}
	case NeedInput[A, B]:
		switch v := src.(type) {
		case Closed[A]:
			return t.Close
		case Open[A]:
			return SourceConduit(v.Next, t.Push(v.Value))
		case PendingSource[A]:
			return PendingSource[B]{Step: kont.Map(v.Step, func(next Source[A]) Source[B] {
				return SourceConduit(next, c)
			})}
		}
	}
	panic("pull: unknown conduit state")
}

// ConduitSink fuses a conduit with a sink consuming its output, yielding a
// sink over the conduit's input. When the sink finishes first the conduit
// is closed; its inner-typed leftover cannot cross the boundary and is
// discarded. When the conduit finishes first the sink is closed and the
// conduit's leftover is forwarded.
func ConduitSink[I, A, B any](c Conduit[I, A], sink Sink[A, B]) Sink[I, B] {
	switch s := sink.(type) {
	case Done[A, B]:
		return PendingSink[I, B]{Step: kont.Then(ConduitClose(c), pureSink[I, B](Done[I, B]{Result: s.Result}))}
	case PendingSink[A, B]:
		return PendingSink[I, B]{Step: kont.Map(s.Step, func(next Sink[A, B]) Sink[I, B] {
			return ConduitSink(c, next)
		})}
	case Processing[A, B]:
		switch t := c.(type) {
		case HaveOutput[I, A]:
			return ConduitSink(t.Next, s.Push(t.Value))
		case NeedInput[I, A]:
			return Processing[I, B]{
				Push: func(input I) Sink[I, B] {
					return ConduitSink(t.Push(input), sink)
				},
				Close: Connect(t.Close, sink),
			}
		case Finished[I, A]:
			return PendingSink[I, B]{Step: kont.Map(s.Close, func(result B) Sink[I, B] {
				return Done[I, B]{Leftover: t.Leftover, Result: result}
			})}
		case PendingConduit[I, A]:
			return PendingSink[I, B]{Step: kont.Map(t.Step, func(next Conduit[I, A]) Sink[I, B] {
				return ConduitSink(next, sink)
			})}
		}
	}
	panic("pull: unknown sink state")
}

// FuseConduit composes two conduits into one. The inner conduit feeds the
// outer; when the inner finishes, the outer's close-path source is flushed
// as remaining output and the inner's leftover is forwarded.
func FuseConduit[I, A, B any](inner Conduit[I, A], outer Conduit[A, B]) Conduit[I, B] {
	switch t := outer.(type) {
	case HaveOutput[A, B]:
		return HaveOutput[I, B]{
			Next:  FuseConduit(inner, t.Next),
			Close: kont.Then(ConduitClose(inner), t.Close),
			Value: t.Value,
		}
	case Finished[A, B]:
		// The outer's inner-typed leftover cannot cross the boundary.
		return PendingConduit[I, B]{
			Step:  kont.Then(ConduitClose(inner), pureConduit[I, B](Finished[I, B]{})),
			Close: ConduitClose(inner),
		}
	case PendingConduit[A, B]:
		return PendingConduit[I, B]{
			Step: kont.Map(t.Step, func(next Conduit[A, B]) Conduit[I, B] {
				return FuseConduit(inner, next)
			}),
			Close: kont.Then(ConduitClose(inner), t.Close),
		}
	case NeedInput[A, B]:
		switch v := inner.(type) {
		case HaveOutput[I, A]:
			return FuseConduit(v.Next, t.Push(v.Value))
		case NeedInput[I, A]:
			return NeedInput[I, B]{
				Push: func(input I) Conduit[I, B] {
					return FuseConduit(v.Push(input), outer)
				},
				Close: SourceConduit(v.Close, outer),
			}
		case Finished[I, A]:
			return conduitFromSource(t.Close, v.Leftover)
		case PendingConduit[I, A]:
			return PendingConduit[I, B]{
				Step: kont.Map(v.Step, func(next Conduit[I, A]) Conduit[I, B] {
					return FuseConduit(next, outer)
				}),
				Close: kont.Then(v.Close, conduitCloseEff(outer)),
			}
		}
	}
	panic("pull: unknown conduit state")
}

// conduitCloseEff defers the close decision so outer state resolved later
// is not captured eagerly.
func conduitCloseEff[A, B any](c Conduit[A, B]) Action {
	return delay(func() Action {
		return ConduitClose(c)
	})
}

// conduitFromSource emits the remainder of a source as conduit output,
// then finishes with the given leftover.
func conduitFromSource[I, B any](src Source[B], leftover Leftover[I]) Conduit[I, B] {
	switch v := src.(type) {
	case Open[B]:
		return HaveOutput[I, B]{
			Next:  conduitFromSource(v.Next, leftover),
			Close: v.Close,
			Value: v.Value,
		}
	case PendingSource[B]:
		return PendingConduit[I, B]{
			Step: kont.Map(v.Step, func(next Source[B]) Conduit[I, B] {
				return conduitFromSource(next, leftover)
			}),
			Close: SourceClose(src),
		}
	default:
		return Finished[I, B]{Leftover: leftover}
	}
}
