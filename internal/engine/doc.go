// Package engine replays recorded edit traces against a document buffer.
//
// The engine applies every transaction's patches in order, each patch seeing
// the effect of the ones before it. It is fail-fast: the first patch that
// does not fit the current document aborts the replay with a
// *MalformedTraceError naming the transaction and patch.
//
// # Architecture
//
// The engine is built on two sub-packages:
//
//   - rope: immutable B+ tree rope indexed by code points
//   - buffer: mutable document facade over the rope with bounds checking
//
// The engine never compares the result with the trace's expected content;
// that is left to the caller so partial replays can be inspected.
//
// # Basic Usage
//
//	buf := buffer.NewBufferFromString(tr.StartContent)
//	res, err := engine.New().Replay(tr, buf)
//	if err != nil {
//	    var mt *engine.MalformedTraceError
//	    if errors.As(err, &mt) {
//	        fmt.Println("bad patch at", mt.Loc)
//	    }
//	}
//
// # Hooks
//
// WithPatchHook runs a function before each patch is applied; a non-nil
// return aborts the replay with that error unchanged. The validator uses it
// to check timestamps in the same pass as the edits.
//
// # Thread Safety
//
// An Engine holds configuration only and may be shared. The buffer passed to
// Replay is owned by that call.
package engine
