// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/pull"
)

// memChunks builds an in-memory chunked byte source via SourceState.
// Pulls are pure; no effect operations are performed.
func memChunks(chunks ...string) pull.Source[[]byte] {
	raw := make([][]byte, len(chunks))
	for i, c := range chunks {
		raw[i] = []byte(c)
	}
	return memRaw(raw)
}

func memRaw(chunks [][]byte) pull.Source[[]byte] {
	return pull.SourceState(0, func(i int) kont.Eff[pull.SourcePull[int, []byte]] {
		if i >= len(chunks) {
			return kont.Pure(pull.SourcePull[int, []byte]{})
		}
		return kont.Pure(pull.SourcePull[int, []byte]{State: i + 1, Value: chunks[i], Open: true})
	})
}

// opChunks is memChunks with one countOp dispatched per pull, so that
// stepping tests observe a suspension per source advance.
func opChunks(n *int, chunks ...string) pull.Source[[]byte] {
	return pull.SourceState(0, func(i int) kont.Eff[pull.SourcePull[int, []byte]] {
		return kont.Map(kont.Perform(countOp{n: n}), func(struct{}) pull.SourcePull[int, []byte] {
			if i >= len(chunks) {
				return pull.SourcePull[int, []byte]{}
			}
			return pull.SourcePull[int, []byte]{State: i + 1, Value: []byte(chunks[i]), Open: true}
		})
	})
}

// collectBytes drives src to completion and concatenates its chunks.
func collectBytes(t *testing.T, src pull.Source[[]byte]) []byte {
	t.Helper()
	return bytes.Join(collectChunks(t, src), nil)
}

// collectChunks drives src to completion and returns its chunks.
func collectChunks(t *testing.T, src pull.Source[[]byte]) [][]byte {
	t.Helper()
	chunks, err := pull.Run(src, pull.CollectSink[[]byte]())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return chunks
}

// chunkStrings drives src to completion and returns its chunks as strings.
func chunkStrings(t *testing.T, src pull.Source[[]byte]) []string {
	t.Helper()
	chunks := collectChunks(t, src)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = string(c)
	}
	return out
}

// runAction evaluates a close action to completion.
func runAction(t *testing.T, action pull.Action) {
	t.Helper()
	if _, err := pull.ExecIO(action); err != nil {
		t.Fatalf("action: %v", err)
	}
}

// forceConduit resolves pending steps until the conduit state is concrete.
func forceConduit[I, O any](t *testing.T, c pull.Conduit[I, O]) pull.Conduit[I, O] {
	t.Helper()
	for {
		p, ok := c.(pull.PendingConduit[I, O])
		if !ok {
			return c
		}
		next, err := pull.ExecIO(p.Step)
		if err != nil {
			t.Fatalf("conduit step: %v", err)
		}
		c = next
	}
}

// forceSink resolves pending steps until the sink state is concrete.
func forceSink[I, O any](t *testing.T, s pull.Sink[I, O]) pull.Sink[I, O] {
	t.Helper()
	for {
		p, ok := s.(pull.PendingSink[I, O])
		if !ok {
			return s
		}
		next, err := pull.ExecIO(p.Step)
		if err != nil {
			t.Fatalf("sink step: %v", err)
		}
		s = next
	}
}

// feedConduit pushes chunks into a byte conduit in order, collecting every
// output chunk. finished reports whether the conduit reached Finished
// before exhausting the inputs.
func feedConduit(t *testing.T, c pull.Conduit[[]byte, []byte], chunks ...string) (outs []string, leftover pull.Leftover[[]byte], finished bool) {
	t.Helper()
	next := 0
	for {
		switch v := forceConduit(t, c).(type) {
		case pull.HaveOutput[[]byte, []byte]:
			outs = append(outs, string(v.Value))
			c = v.Next
		case pull.NeedInput[[]byte, []byte]:
			if next >= len(chunks) {
				return outs, pull.Leftover[[]byte]{}, false
			}
			c = v.Push([]byte(chunks[next]))
			next++
		case pull.Finished[[]byte, []byte]:
			return outs, v.Leftover, true
		default:
			t.Fatalf("unexpected conduit state %T", v)
		}
	}
}

// countOp increments a counter when dispatched. Never blocks.
type countOp struct {
	kont.Phantom[struct{}]
	n *int
}

func (c countOp) DispatchIO() (kont.Resumed, error) {
	*c.n++
	return struct{}{}, nil
}

// failOp always fails with err.
type failOp struct {
	kont.Phantom[struct{}]
	err error
}

func (f failOp) DispatchIO() (kont.Resumed, error) {
	return nil, f.err
}

// flakyOp fails with iox.ErrWouldBlock until remaining hits zero.
type flakyOp struct {
	kont.Phantom[struct{}]
	remaining *int
}

func (f flakyOp) DispatchIO() (kont.Resumed, error) {
	if *f.remaining > 0 {
		*f.remaining--
		return nil, iox.ErrWouldBlock
	}
	return struct{}{}, nil
}
