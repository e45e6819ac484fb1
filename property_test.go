// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull_test

import (
	"bytes"
	"testing"
	"testing/quick"

	"code.hybscloud.com/pull"
)

// splitBytes cuts data into chunks with pseudo-random sizes derived from
// seed, occasionally producing empty chunks.
func splitBytes(data []byte, seed uint64) [][]byte {
	var chunks [][]byte
	state := seed | 1
	for len(data) > 0 {
		state = state*6364136223846793005 + 1442695040888963407
		n := int(state>>59) % 8
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

func runLines(chunks [][]byte) ([][]byte, error) {
	return pull.Run(pull.SourceConduit(memRaw(chunks), pull.Lines()), pull.CollectSink[[]byte]())
}

func eqChunks(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestPropertyReassembly(t *testing.T) {
	prop := func(data []byte, seed uint64) bool {
		id := pull.FuseConduit(
			pull.Isolate(int64(len(data))+1),
			pull.TakeWhile(func(byte) bool { return true }),
		)
		out, err := pull.Run(
			pull.SourceConduit(memRaw(splitBytes(data, seed)), id),
			pull.CollectSink[[]byte](),
		)
		if err != nil {
			return false
		}
		return bytes.Equal(bytes.Join(out, nil), data)
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatal(err)
	}
}

func TestPropertyLinesChunkInvariance(t *testing.T) {
	prop := func(data []byte, seedA, seedB uint64) bool {
		a, err := runLines(splitBytes(data, seedA))
		if err != nil {
			return false
		}
		b, err := runLines(splitBytes(data, seedB))
		if err != nil {
			return false
		}
		return eqChunks(a, b)
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatal(err)
	}
}

func TestPropertyIsolateSplit(t *testing.T) {
	prop := func(data []byte, seed uint64, cut uint8) bool {
		n := int64(cut)
		head, err := pull.Run(
			pull.SourceConduit(memRaw(splitBytes(data, seed)), pull.Isolate(n)),
			pull.CollectSink[[]byte](),
		)
		if err != nil {
			return false
		}
		want := data
		if int64(len(want)) > n {
			want = want[:n]
		}
		return bytes.Equal(bytes.Join(head, nil), want)
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatal(err)
	}
}
