// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/pull"
)

func TestExecIOPropagatesError(t *testing.T) {
	sentinel := errors.New("disk gone")
	eff := kont.Then(kont.Perform(failOp{err: sentinel}), kont.Pure(1))
	_, err := pull.ExecIO(eff)
	if !errors.Is(err, sentinel) {
		t.Fatalf("got err %v, want %v", err, sentinel)
	}
}

func TestExecIORetriesWouldBlock(t *testing.T) {
	remaining := 3
	eff := kont.Map(kont.Perform(flakyOp{remaining: &remaining}), func(struct{}) int { return 7 })
	got, err := pull.ExecIO(eff)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
	if remaining != 0 {
		t.Fatalf("remaining=%d, want 0", remaining)
	}
}

func TestExecIOPureProtocol(t *testing.T) {
	got, err := pull.ExecIO(kont.Pure("ok"))
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q, want ok", got)
	}
}

func TestExecIOStopsAtFirstError(t *testing.T) {
	sentinel := errors.New("first failure")
	n := 0
	eff := kont.Then(
		kont.Perform(failOp{err: sentinel}),
		kont.Perform(countOp{n: &n}),
	)
	_, err := pull.ExecIO(eff)
	if !errors.Is(err, sentinel) {
		t.Fatalf("got err %v, want %v", err, sentinel)
	}
	if n != 0 {
		t.Fatalf("operation after the failure still ran %d times", n)
	}
}

func TestRunEndToEnd(t *testing.T) {
	out, err := pull.Run(pull.SourceConduit(memChunks("a\nb"), pull.Lines()), pull.CollectSink[[]byte]())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out) != 2 || string(out[0]) != "a" || string(out[1]) != "b" {
		t.Fatalf("got %v, want [a b]", out)
	}
}
