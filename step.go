// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/kont"
)

// Reify converts a Cont-world pipeline to Expr-world for stepping with
// [Step] and [Advance].
func Reify[A any](m kont.Eff[A]) kont.Expr[A] {
	return kont.Reify(m)
}

// Reflect converts an Expr-world pipeline back to Cont-world for blocking
// evaluation with [ExecIO].
func Reflect[A any](m kont.Expr[A]) kont.Eff[A] {
	return kont.Reflect(m)
}

// Step evaluates a pipeline until the first effect suspension.
// Returns (result, nil) on completion, or (zero, suspension) if pending.
func Step[R any](pipeline kont.Expr[R]) (R, *kont.Suspension[R]) {
	return kont.StepExpr(pipeline)
}

// Advance dispatches the suspended I/O operation once, non-blocking.
//
// On success (nil error), the suspension is consumed and the pipeline
// advances to the next effect or completion. On iox.ErrWouldBlock the
// suspension is unconsumed and may be retried once the resource is ready.
// Guards are not scope-tracked on this path; abort-path draining is the
// caller's concern when driving by hand.
func Advance[R any](susp *kont.Suspension[R]) (R, *kont.Suspension[R], error) {
	iop, ok := susp.Op().(IODispatcher)
	if !ok {
		panic("pull: unhandled effect in Advance")
	}
	v, err := iop.DispatchIO()
	if err != nil {
		var zero R
		return zero, susp, err
	}
	result, next := susp.Resume(v)
	return result, next, nil
}
