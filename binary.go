// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull

import (
	"bytes"
	"io"
	"os"

	"code.hybscloud.com/kont"
)

// chunkSize is the fixed read quantum of the byte-stream adapters.
const chunkSize = 4096

// lineDelim is the only delimiter [Lines] recognizes.
const lineDelim byte = 10

// openFile is the effect operation for opening a file in binary mode.
type openFile struct {
	kont.Phantom[*os.File]
	path string
	flag int
}

func (o openFile) DispatchIO() (kont.Resumed, error) {
	f, err := os.OpenFile(o.path, o.flag, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// closeFile is the effect operation for releasing a file handle.
type closeFile struct {
	kont.Phantom[struct{}]
	file *os.File
}

func (c closeFile) DispatchIO() (kont.Resumed, error) {
	if err := c.file.Close(); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// readChunk is the effect operation for reading up to n bytes.
// An empty chunk signals end of stream.
type readChunk struct {
	kont.Phantom[[]byte]
	file *os.File
	n    int
}

func (r readChunk) DispatchIO() (kont.Resumed, error) {
	buf := make([]byte, r.n)
	n, err := r.file.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil || err == io.EOF {
		return []byte(nil), nil
	}
	return nil, err
}

// writeChunk is the effect operation for writing one chunk.
type writeChunk struct {
	kont.Phantom[struct{}]
	file *os.File
	data []byte
}

func (w writeChunk) DispatchIO() (kont.Resumed, error) {
	if _, err := w.file.Write(w.data); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// seekFile is the effect operation for seeking to an absolute offset.
type seekFile struct {
	kont.Phantom[struct{}]
	file   *os.File
	offset int64
}

func (s seekFile) DispatchIO() (kont.Resumed, error) {
	if _, err := s.file.Seek(s.offset, io.SeekStart); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// readPull is the shared pull step of the chunked handle sources.
func readPull(f *os.File) kont.Eff[Pulled[[]byte]] {
	return kont.Map(kont.Perform(readChunk{file: f, n: chunkSize}), func(chunk []byte) Pulled[[]byte] {
		if len(chunk) == 0 {
			return Pulled[[]byte]{}
		}
		return Pulled[[]byte]{Value: chunk, Ok: true}
	})
}

// SourceFile produces the contents of the file at path in chunks of up to
// 4096 bytes. The handle is opened lazily on the first pull and released
// exactly once, at end of file or when the consumer abandons the stream.
func SourceFile(path string) Source[[]byte] {
	return SourceIO(
		kont.Perform(openFile{path: path, flag: os.O_RDONLY}),
		func(f *os.File) Action {
			return kont.Perform(closeFile{file: f})
		},
		readPull,
	)
}

// SourceHandle produces the contents of a pre-opened handle in chunks of
// up to 4096 bytes. The handle is not owned: it is never closed.
func SourceHandle(f *os.File) Source[[]byte] {
	return SourceIO(
		kont.Pure(f),
		func(*os.File) Action { return nop() },
		readPull,
	)
}

// rangeState is the cursor of a range-limited source session.
type rangeState struct {
	file      *os.File
	remaining int64
	limited   bool
}

// SourceFileRange produces at most count bytes of the file at path,
// starting at the absolute byte offset. A non-positive offset reads from
// the start; a negative count reads to end of file. Seeks once, when the
// handle is acquired; the handle is released at budget zero, end of file,
// or abandonment.
func SourceFileRange(path string, offset, count int64) Source[[]byte] {
	alloc := kont.Bind(kont.Perform(openFile{path: path, flag: os.O_RDONLY}), func(f *os.File) kont.Eff[*rangeState] {
		st := &rangeState{file: f, remaining: count, limited: count >= 0}
		if offset > 0 {
			return kont.Then(kont.Perform(seekFile{file: f, offset: offset}), kont.Pure(st))
		}
		return kont.Pure(st)
	})
	cleanup := func(st *rangeState) Action {
		return kont.Perform(closeFile{file: st.file})
	}
	pull := func(st *rangeState) kont.Eff[Pulled[[]byte]] {
		if st.limited && st.remaining < 0 {
			panic("pull: negative byte budget")
		}
		n := int64(chunkSize)
		if st.limited {
			if st.remaining == 0 {
				return kont.Pure(Pulled[[]byte]{})
			}
			n = min(st.remaining, chunkSize)
		}
		return kont.Map(kont.Perform(readChunk{file: st.file, n: int(n)}), func(chunk []byte) Pulled[[]byte] {
			if len(chunk) == 0 {
				return Pulled[[]byte]{}
			}
			if st.limited {
				st.remaining -= int64(len(chunk))
				if st.remaining < 0 {
					panic("pull: negative byte budget")
				}
			}
			return Pulled[[]byte]{Value: chunk, Ok: true}
		})
	}
	return SourceIO(alloc, cleanup, pull)
}

// SinkFile writes every pushed chunk to the file at path, truncating it
// first. The handle is opened lazily on the first push and released
// exactly once.
func SinkFile(path string) Sink[[]byte, struct{}] {
	return sinkFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// SinkFileAppend writes every pushed chunk to the end of the file at path.
func SinkFileAppend(path string) Sink[[]byte, struct{}] {
	return sinkFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

func sinkFile(path string, flag int) Sink[[]byte, struct{}] {
	return SinkIO(
		kont.Perform(openFile{path: path, flag: flag}),
		func(f *os.File) Action {
			return kont.Perform(closeFile{file: f})
		},
		writePush,
		func(*os.File) kont.Eff[struct{}] {
			return kont.Pure(struct{}{})
		},
	)
}

// SinkHandle writes every pushed chunk to a pre-opened handle.
// The handle is not owned: it is never closed.
func SinkHandle(f *os.File) Sink[[]byte, struct{}] {
	return SinkIO(
		kont.Pure(f),
		func(*os.File) Action { return nop() },
		writePush,
		func(*os.File) kont.Eff[struct{}] {
			return kont.Pure(struct{}{})
		},
	)
}

func writePush(f *os.File, chunk []byte) kont.Eff[SinkIOResult[[]byte, struct{}]] {
	return kont.Map(kont.Perform(writeChunk{file: f, data: chunk}), func(struct{}) SinkIOResult[[]byte, struct{}] {
		return SinkIOProcessing[[]byte, struct{}]{}
	})
}

// Isolate forwards at most n bytes total, splitting the chunk that
// straddles the boundary exactly at byte n. Bytes beyond the boundary
// become leftover; once the budget is exhausted the next push finishes
// immediately without consuming anything.
func Isolate(n int64) Conduit[[]byte, []byte] {
	push := func(remaining int64, chunk []byte) kont.Eff[StateResult[int64, []byte, []byte]] {
		if remaining <= 0 {
			var leftover Leftover[[]byte]
			if len(chunk) > 0 {
				leftover = Unconsumed(chunk)
			}
			return pureStateResult[int64, []byte, []byte](StateFinished[int64, []byte, []byte]{
				Leftover: leftover,
			})
		}
		if len(chunk) == 0 {
			return pureStateResult[int64, []byte, []byte](StateProducing[int64, []byte, []byte]{State: remaining})
		}
		size := int64(len(chunk))
		if size < remaining {
			return pureStateResult[int64, []byte, []byte](StateProducing[int64, []byte, []byte]{
				State:  remaining - size,
				Output: [][]byte{chunk},
			})
		}
		var leftover Leftover[[]byte]
		if rest := chunk[remaining:]; len(rest) > 0 {
			leftover = Unconsumed(rest)
		}
		return pureStateResult[int64, []byte, []byte](StateFinished[int64, []byte, []byte]{
			Leftover: leftover,
			Output:   [][]byte{chunk[:remaining]},
		})
	}
	close := func(int64) kont.Eff[[][]byte] {
		return kont.Pure([][]byte(nil))
	}
	return ConduitState(n, push, close)
}

// Head consumes the first byte of the stream. Ok is false when the stream
// ended first; the unread remainder of the chunk is leftover, and never an
// empty chunk.
func Head() Sink[[]byte, Pulled[byte]] {
	push := func(_ struct{}, chunk []byte) kont.Eff[SinkResult[struct{}, []byte, Pulled[byte]]] {
		if len(chunk) == 0 {
			return pureSinkResult[struct{}, []byte, Pulled[byte]](SinkProcessing[struct{}, []byte, Pulled[byte]]{})
		}
		var leftover Leftover[[]byte]
		if len(chunk) > 1 {
			leftover = Unconsumed(chunk[1:])
		}
		return pureSinkResult[struct{}, []byte, Pulled[byte]](SinkDone[struct{}, []byte, Pulled[byte]]{
			Leftover: leftover,
			Result:   Pulled[byte]{Value: chunk[0], Ok: true},
		})
	}
	close := func(struct{}) kont.Eff[Pulled[byte]] {
		return kont.Pure(Pulled[byte]{})
	}
	return SinkState(struct{}{}, push, close)
}

// TakeWhile forwards bytes while pred holds, splitting the chunk where it
// first fails. The failing suffix becomes leftover; a match landing
// exactly on a chunk boundary never emits an empty chunk.
func TakeWhile(pred func(byte) bool) Conduit[[]byte, []byte] {
	push := func(_ struct{}, chunk []byte) kont.Eff[StateResult[struct{}, []byte, []byte]] {
		i := 0
		for i < len(chunk) && pred(chunk[i]) {
			i++
		}
		if i == len(chunk) {
			var outputs [][]byte
			if len(chunk) > 0 {
				outputs = [][]byte{chunk}
			}
			return pureStateResult[struct{}, []byte, []byte](StateProducing[struct{}, []byte, []byte]{Output: outputs})
		}
		var outputs [][]byte
		if i > 0 {
			outputs = [][]byte{chunk[:i]}
		}
		return pureStateResult[struct{}, []byte, []byte](StateFinished[struct{}, []byte, []byte]{
			Leftover: Unconsumed(chunk[i:]),
			Output:   outputs,
		})
	}
	close := func(struct{}) kont.Eff[[][]byte] {
		return kont.Pure([][]byte(nil))
	}
	return ConduitState(struct{}{}, push, close)
}

// DropWhile discards bytes while pred holds. The suffix starting at the
// first failing byte is leftover, never dropped.
func DropWhile(pred func(byte) bool) Sink[[]byte, struct{}] {
	push := func(_ struct{}, chunk []byte) kont.Eff[SinkResult[struct{}, []byte, struct{}]] {
		i := 0
		for i < len(chunk) && pred(chunk[i]) {
			i++
		}
		if i == len(chunk) {
			return pureSinkResult[struct{}, []byte, struct{}](SinkProcessing[struct{}, []byte, struct{}]{})
		}
		return pureSinkResult[struct{}, []byte, struct{}](SinkDone[struct{}, []byte, struct{}]{
			Leftover: Unconsumed(chunk[i:]),
		})
	}
	close := func(struct{}) kont.Eff[struct{}] {
		return kont.Pure(struct{}{})
	}
	return SinkState(struct{}{}, push, close)
}

// Lines splits the byte stream on newline (byte value 10), stripping the
// delimiter. A partial line accumulates across arbitrarily many
// delimiter-less chunks with amortized copying; on close, a non-empty
// trailing fragment is flushed without appending a trailing empty line.
func Lines() Conduit[[]byte, []byte] {
	push := func(buf []byte, chunk []byte) kont.Eff[StateResult[[]byte, []byte, []byte]] {
		var outputs [][]byte
		rest := chunk
		for {
			i := bytes.IndexByte(rest, lineDelim)
			if i < 0 {
				break
			}
			line := rest[:i]
			rest = rest[i+1:]
			if len(buf) > 0 {
				line = append(buf, line...)
				buf = nil
			}
			outputs = append(outputs, line)
		}
		buf = append(buf, rest...)
		return pureStateResult[[]byte, []byte, []byte](StateProducing[[]byte, []byte, []byte]{
			State:  buf,
			Output: outputs,
		})
	}
	close := func(buf []byte) kont.Eff[[][]byte] {
		if len(buf) == 0 {
			return kont.Pure([][]byte(nil))
		}
		return kont.Pure([][]byte{buf})
	}
	return ConduitState([]byte(nil), push, close)
}
