// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pull_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/pull"
)

func TestStepAdvanceDrivesPipeline(t *testing.T) {
	pulls := 0
	protocol := pull.Reify(pull.Connect(opChunks(&pulls, "ab", "cd"), pull.CollectSink[[]byte]()))

	result, susp := pull.Step(protocol)
	if susp == nil {
		t.Fatal("pipeline completed without suspending")
	}
	steps := 0
	for susp != nil {
		if _, ok := susp.Op().(pull.IODispatcher); !ok {
			t.Fatalf("suspended on a non-I/O operation %T", susp.Op())
		}
		var err error
		result, susp, err = pull.Advance(susp)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		steps++
	}
	// Two values plus the closing pull.
	if steps != 3 || pulls != 3 {
		t.Fatalf("steps=%d pulls=%d, want 3/3", steps, pulls)
	}
	if len(result) != 2 || string(result[0]) != "ab" || string(result[1]) != "cd" {
		t.Fatalf("got %v, want [ab cd]", result)
	}
}

func TestStepCompletesWithoutSuspension(t *testing.T) {
	// A pure pipeline performs no operations and completes in one step.
	result, susp := pull.Step(pull.Reify(pull.Connect(memChunks("x"), pull.CollectSink[[]byte]())))
	if susp != nil {
		t.Fatalf("pure pipeline suspended on %T", susp.Op())
	}
	if len(result) != 1 || string(result[0]) != "x" {
		t.Fatalf("got %v, want [x]", result)
	}
}

func TestAdvanceWouldBlockLeavesSuspensionUnconsumed(t *testing.T) {
	remaining := 2
	_, susp := pull.Step(pull.Reify(kont.Perform(flakyOp{remaining: &remaining})))
	if susp == nil {
		t.Fatal("flaky operation did not suspend")
	}

	blocked := 0
	for {
		_, next, err := pull.Advance(susp)
		if err == nil {
			if next != nil {
				t.Fatalf("pipeline still suspended on %T", next.Op())
			}
			break
		}
		if !errors.Is(err, iox.ErrWouldBlock) {
			t.Fatalf("advance: %v", err)
		}
		if next != susp {
			t.Fatal("would-block consumed the suspension")
		}
		susp = next
		blocked++
	}
	if blocked != 2 {
		t.Fatalf("blocked %d times, want 2", blocked)
	}
}

func TestReflectRoundtrip(t *testing.T) {
	n := 0
	eff := pull.Reflect(pull.Reify(kont.Map(kont.Perform(countOp{n: &n}), func(struct{}) int { return 42 })))
	got, err := pull.ExecIO(eff)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got != 42 || n != 1 {
		t.Fatalf("got %d (dispatches %d), want 42 (1)", got, n)
	}
}
