// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/kont"
)

// Conduit is a transducer from input values of type I to output values of
// type O, sitting between a [Source] and a [Sink].
//
// A conduit is one of [Finished], [NeedInput], [HaveOutput] or
// [PendingConduit]. Finished is strictly terminal.
type Conduit[I, O any] interface {
	conduit(I, O)
}

// Finished is the terminal conduit state, carrying any pushed input the
// conduit did not consume.
type Finished[I, O any] struct {
	Leftover Leftover[I]
}

func (Finished[I, O]) conduit(I, O) {}

// NeedInput wants one more input value.
//
// Close is the stream of output still owed when the conduit is closed
// instead of pushed: closing a conduit may flush buffered output, so the
// close path is itself a [Source].
type NeedInput[I, O any] struct {
	Push  func(I) Conduit[I, O]
	Close Source[O]
}

func (NeedInput[I, O]) conduit(I, O) {}

// HaveOutput holds one output value available now.
//
// Close runs if the consumer abandons the conduit here; it is safe to
// invoke even if Next is never reached.
type HaveOutput[I, O any] struct {
	Next  Conduit[I, O]
	Close Action
	Value O
}

func (HaveOutput[I, O]) conduit(I, O) {}

// PendingConduit is a suspension point. Close releases whatever the pending
// step holds without forcing the step.
type PendingConduit[I, O any] struct {
	Step  kont.Eff[Conduit[I, O]]
	Close Action
}

func (PendingConduit[I, O]) conduit(I, O) {}

// pureConduit fixes the interface type of a concrete conduit for kont.Pure.
func pureConduit[I, O any](c Conduit[I, O]) kont.Eff[Conduit[I, O]] {
	return kont.Pure(c)
}

// ConduitClose terminates a conduit early, releasing exactly what the
// current state holds. Unread output is silently discarded; the consumer
// chose to stop. Safe to call in any state; at most one release results
// per held resource.
func ConduitClose[I, O any](c Conduit[I, O]) Action {
	switch v := c.(type) {
	case NeedInput[I, O]:
		return SourceClose(v.Close)
	case HaveOutput[I, O]:
		return v.Close
	case PendingConduit[I, O]:
		return v.Close
	default:
		return nop()
	}
}

// HaveMore splices a finite burst of output in front of a continuation.
// Each value becomes one [HaveOutput] node sharing close, collapsing to
// next once the burst is exhausted.
func HaveMore[I, O any](next Conduit[I, O], close Action, values []O) Conduit[I, O] {
	if len(values) == 0 {
		return next
	}
	return HaveOutput[I, O]{
		Next:  HaveMore(next, close, values[1:]),
		Close: close,
		Value: values[0],
	}
}
