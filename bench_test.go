// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/pull"
)

// BenchmarkConnectCollect measures driving a plain source into a sink.
func BenchmarkConnectCollect(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		pull.Run(memChunks("alpha", "beta", "gamma", "delta"), pull.CollectSink[[]byte]())
	}
}

// BenchmarkIsolate measures one boundary split per pipeline run.
func BenchmarkIsolate(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		pull.Run(
			pull.SourceConduit(memChunks("alpha", "beta", "gamma"), pull.Isolate(7)),
			pull.CollectSink[[]byte](),
		)
	}
}

// BenchmarkLines measures line splitting over chunked input.
func BenchmarkLines(b *testing.B) {
	chunk := string(bytes.Repeat([]byte("0123456789abcde\n"), 16))
	b.ReportAllocs()
	for b.Loop() {
		pull.Run(
			pull.SourceConduit(memChunks(chunk, chunk, chunk, chunk), pull.Lines()),
			pull.CollectSink[[]byte](),
		)
	}
}

// BenchmarkFuseConduit measures a two-stage fused pipeline.
func BenchmarkFuseConduit(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		pull.Run(
			pull.SourceConduit(
				memChunks("aa\nbb\ncc\ndd"),
				pull.FuseConduit(pull.Isolate(8), pull.Lines()),
			),
			pull.CollectSink[[]byte](),
		)
	}
}
