// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pull provides a composable pull-based stream-processing protocol
// as cooperating state machines over [code.hybscloud.com/kont].
//
// Three value families cooperate: a [Source] produces values on demand,
// a [Sink] consumes values into a final result, and a [Conduit] transduces
// values between the two. Every state is an immutable value; the only
// suspension points are the Pending variants, whose stored effects an
// external driver evaluates one at a time.
//
// # Architecture
//
//   - States: sealed variant families [Source], [Sink], [Conduit]. Terminal
//     states ([Closed], [Done], [Finished]) admit no further transitions.
//   - Effects: suspended steps and close actions are [kont.Eff] values;
//     I/O bottoms out in operations implementing [IODispatcher].
//   - Resources: acquisition is lazy and release is exactly-once, enforced
//     by [Guard] tokens ([code.hybscloud.com/atomix] counters) rather than
//     caller discipline. [ExecIO] drains releases still owed when a step
//     fails mid-stream.
//   - Non-blocking: operations may return [code.hybscloud.com/iox.ErrWouldBlock];
//     [ExecIO] waits past the boundary with iox.Backoff, [Advance] hands the
//     unconsumed suspension back to the caller.
//
// # API Topologies
//
//   - Builders: [ConduitState], [ConduitIO], [SourceState], [SourceIO],
//     [SinkState], [SinkIO] turn state-threading step functions into
//     protocol states.
//   - Sequencing: [SequenceSink] and [Sequence] replay a one-shot sink
//     to drive a long-lived conduit.
//   - Lifting: [TransSource], [TransSink], [TransConduit] rewrite every
//     suspended action to run under a broader execution context.
//   - Shutdown: [SourceClose], [ConduitClose], [HaveMore].
//   - Fusion: [Connect], [SourceConduit], [ConduitSink], [FuseConduit], [Run].
//   - Stepping: [Reify], [Step] and [Advance] evaluate a fused pipeline one
//     effect at a time, making it easy to integrate with a proactor loop.
//   - Bytes: [SourceFile], [SourceFileRange], [SinkFile], [Isolate], [Head],
//     [TakeWhile], [DropWhile], [Lines] instantiate the combinators over
//     4096-byte chunks.
//
// # Example
//
//	src := pull.SourceConduit(pull.SourceFile("access.log"), pull.Lines())
//	lines, err := pull.Run(src, pull.CollectSink[[]byte]())
package pull
