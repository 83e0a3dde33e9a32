package engine

import (
	"github.com/dshills/editrace/internal/engine/buffer"
	"github.com/dshills/editrace/internal/trace"
)

// Engine replays traces. It holds configuration only.
type Engine struct {
	hook          PatchHook
	progress      ProgressFunc
	progressEvery int
	limit         int
}

// Result counts what a replay applied.
type Result struct {
	Txns    int
	Patches int
}

// New creates an engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{progressEvery: DefaultProgressEvery}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Replay applies the trace's transactions, in order, to buf.
// It stops at the first error; buf then holds the document as it was before
// the failing patch.
func (e *Engine) Replay(tr *trace.Trace, buf *buffer.Buffer) (Result, error) {
	var res Result

	total := len(tr.Txns)
	if e.limit > 0 && e.limit < total {
		total = e.limit
	}

	for i := 0; i < total; i++ {
		if e.progress != nil && i%e.progressEvery == 0 {
			e.progress(i, total)
		}
		txn := tr.Txns[i]
		if err := e.ApplyTxn(buf, i, txn); err != nil {
			return res, err
		}
		res.Txns++
		res.Patches += len(txn.Patches)
	}

	if e.progress != nil {
		e.progress(total, total)
	}
	return res, nil
}

// ApplyTxn applies one transaction whose index in the trace is index.
// Each patch sees the effect of the previous patches in the transaction.
func (e *Engine) ApplyTxn(buf *buffer.Buffer, index int, txn trace.Txn) error {
	if len(txn.Patches) == 0 {
		return &MalformedTraceError{Loc: trace.Location{Txn: index, Patch: -1}, Err: trace.ErrEmptyTxn}
	}

	for j, p := range txn.Patches {
		loc := trace.Location{Txn: index, Patch: j}
		if e.hook != nil {
			if err := e.hook(loc, p); err != nil {
				return err
			}
		}
		if err := buf.Splice(p.Pos, p.Del, p.Ins); err != nil {
			return &MalformedTraceError{Loc: loc, Err: err}
		}
	}
	return nil
}
