// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"code.hybscloud.com/kont"
)

// IODispatcher is the structural interface for I/O effect operations.
// DispatchIO performs the operation once; it returns
// [code.hybscloud.com/iox.ErrWouldBlock] when the underlying resource
// cannot make progress yet (the non-blocking boundary), and any other
// error on real failure.
type IODispatcher interface {
	DispatchIO() (kont.Resumed, error)
}

// trackGuard registers a freshly acquired guard with the executing scope.
// [ExecIO] intercepts it before generic dispatch; under a foreign handler
// that only knows IODispatcher it degrades to a no-op, keeping the
// protocol runnable at the cost of abort-path draining.
type trackGuard struct {
	kont.Phantom[struct{}]
	guard *Guard
}

// DispatchIO makes trackGuard dispatchable by handlers that do not track
// scopes. Never blocks.
func (trackGuard) DispatchIO() (kont.Resumed, error) {
	return struct{}{}, nil
}
