// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"errors"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// scope is the registry of guards acquired during one execution: the live
// resource sessions reachable from the driver. Single-threaded; only one
// transition is ever in flight.
type scope struct {
	guards []*Guard
}

func (s *scope) track(g *Guard) {
	s.guards = append(s.guards, g)
}

// drain releases every guard not yet released, newest first. Normal
// completion finds all guards already fired; the abort path finds the ones
// the failed step still owed.
func (s *scope) drain() error {
	var first error
	for i := len(s.guards) - 1; i >= 0; i-- {
		g := s.guards[i]
		if g.Released() {
			continue
		}
		if err := runRelease(g.Release()); err != nil && first == nil {
			first = err
		}
	}
	s.guards = s.guards[:0]
	return first
}

// ioHandler implements kont.Handler for I/O effects.
// Waits past the iox.ErrWouldBlock boundary with adaptive backoff; real
// failures abort the evaluation with the error as the Left result.
type ioHandler[R any] struct {
	scope *scope
}

// Dispatch implements kont.Handler via structural interface assertion.
// Dispatch order: Scope → I/O.
func (h ioHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	if t, ok := op.(trackGuard); ok {
		h.scope.track(t.guard)
		return struct{}{}, true
	}
	iop, ok := op.(IODispatcher)
	if !ok {
		panic("pull: unhandled effect in ExecIO")
	}
	var bo iox.Backoff
	for {
		v, err := iop.DispatchIO()
		if err == nil {
			return v, true
		}
		if !errors.Is(err, iox.ErrWouldBlock) {
			return kont.Left[error, R](err), false
		}
		bo.Wait()
	}
}

// ExecIO evaluates a pull pipeline to completion on the calling goroutine.
// Blocks on iox.ErrWouldBlock via adaptive backoff (iox.Backoff), without
// spawning goroutines or creating channels.
//
// On I/O failure the evaluation aborts with the error, and every resource
// acquired during it that the failed step still owed is released before
// ExecIO returns; release stays exactly-once because guards are idempotent.
func ExecIO[R any](protocol kont.Eff[R]) (R, error) {
	sc := &scope{}
	wrapped := kont.Map[kont.Resumed, R, kont.Either[error, R]](protocol, func(r R) kont.Either[error, R] {
		return kont.Right[error, R](r)
	})
	h := ioHandler[R]{scope: sc}
	result := kont.Handle(wrapped, h)
	drainErr := sc.drain()
	if e, ok := result.GetLeft(); ok {
		var zero R
		return zero, e
	}
	r, _ := result.GetRight()
	return r, drainErr
}

// releaseHandler evaluates guard release actions during scope draining.
// Waits on iox.ErrWouldBlock; real failures abort the single release.
type releaseHandler struct{}

func (releaseHandler) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	if _, ok := op.(trackGuard); ok {
		return struct{}{}, true
	}
	iop, ok := op.(IODispatcher)
	if !ok {
		panic("pull: unhandled effect in release")
	}
	var bo iox.Backoff
	for {
		v, err := iop.DispatchIO()
		if err == nil {
			return v, true
		}
		if !errors.Is(err, iox.ErrWouldBlock) {
			return kont.Left[error, struct{}](err), false
		}
		bo.Wait()
	}
}

// runRelease evaluates one release action outside the aborted evaluation.
func runRelease(action Action) error {
	wrapped := kont.Map[kont.Resumed, struct{}, kont.Either[error, struct{}]](action, func(struct{}) kont.Either[error, struct{}] {
		return kont.Right[error, struct{}](struct{}{})
	})
	result := kont.Handle(wrapped, releaseHandler{})
	if e, ok := result.GetLeft(); ok {
		return e
	}
	return nil
}
