// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/kont"
)

// Trans is a structure-preserving lift from one execution context into a
// broader one. It receives each suspended effect with its payload erased
// and must return an effect resolving to the same payload; it may wrap the
// effect but never observe or alter the value flowing through.
type Trans func(kont.Eff[kont.Erased]) kont.Eff[kont.Erased]

// liftEff applies a Trans at a typed position.
func liftEff[A any](lift Trans, m kont.Eff[A]) kont.Eff[A] {
	erased := kont.Map[kont.Resumed, A, kont.Erased](m, func(a A) kont.Erased {
		return a
	})
	return kont.Map[kont.Resumed, kont.Erased, A](lift(erased), func(e kont.Erased) A {
		return e.(A)
	})
}

// TransSource rewrites a source node-by-node to run every suspended step
// under the lifted execution context. The traversal handles exactly one
// constructor at a time and never looks inside an unresolved step, so it
// terminates regardless of how long the stream turns out to be.
func TransSource[A any](lift Trans, s Source[A]) Source[A] {
	switch v := s.(type) {
	case Open[A]:
		return Open[A]{
			Value: v.Value,
			Next:  TransSource(lift, v.Next),
			Close: liftEff(lift, v.Close),
		}
	case PendingSource[A]:
		return PendingSource[A]{Step: liftEff(lift, kont.Map(v.Step, func(next Source[A]) Source[A] {
			return TransSource(lift, next)
		}))}
	default:
		return s
	}
}

// TransSink rewrites a sink node-by-node to run every suspended step under
// the lifted execution context.
func TransSink[I, O any](lift Trans, s Sink[I, O]) Sink[I, O] {
	switch v := s.(type) {
	case Processing[I, O]:
		return Processing[I, O]{
			Push: func(input I) Sink[I, O] {
				return TransSink(lift, v.Push(input))
			},
			Close: liftEff(lift, v.Close),
		}
	case PendingSink[I, O]:
		return PendingSink[I, O]{Step: liftEff(lift, kont.Map(v.Step, func(next Sink[I, O]) Sink[I, O] {
			return TransSink(lift, next)
		}))}
	default:
		return s
	}
}

// TransConduit rewrites a conduit node-by-node to run every suspended step
// and close action under the lifted execution context.
func TransConduit[I, O any](lift Trans, c Conduit[I, O]) Conduit[I, O] {
	switch v := c.(type) {
	case NeedInput[I, O]:
		return NeedInput[I, O]{
			Push: func(input I) Conduit[I, O] {
				return TransConduit(lift, v.Push(input))
			},
			Close: TransSource(lift, v.Close),
		}
	case HaveOutput[I, O]:
		return HaveOutput[I, O]{
			Next:  TransConduit(lift, v.Next),
			Close: liftEff(lift, v.Close),
			Value: v.Value,
		}
	case PendingConduit[I, O]:
		return PendingConduit[I, O]{
			Step: liftEff(lift, kont.Map(v.Step, func(next Conduit[I, O]) Conduit[I, O] {
				return TransConduit(lift, next)
			})),
			Close: liftEff(lift, v.Close),
		}
	default:
		return c
	}
}
