package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/editrace/internal/engine"
	"github.com/dshills/editrace/internal/engine/buffer"
	"github.com/dshills/editrace/internal/engine/rope"
	"github.com/dshills/editrace/internal/trace"
)

const (
	time0 = "2021-10-08T04:37:56.000Z"
	time1 = "2021-10-08T04:37:57.000Z"
)

func p(pos, del int, ins, ts string) trace.Patch {
	return trace.Patch{Pos: pos, Del: del, Ins: ins, Time: trace.StringTime(ts)}
}

func single(patches ...trace.Patch) []trace.Txn {
	txns := make([]trace.Txn, 0, len(patches))
	for _, pt := range patches {
		txns = append(txns, trace.Txn{Patches: []trace.Patch{pt}})
	}
	return txns
}

func TestValidateSuccess(t *testing.T) {
	tr := &trace.Trace{
		StartContent: "",
		EndContent:   "a😀b",
		Txns:         single(p(0, 0, "ab", time0), p(1, 0, "😀", time1)),
	}
	sum, err := New(Config{TimeOrder: TimeOrderStrict}).Validate(tr)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Txns)
	assert.Equal(t, 2, sum.Patches)
	assert.Equal(t, 0, sum.StartLen)
	assert.Equal(t, 3, sum.EndLen)
	assert.Equal(t, 1, sum.Astral)
}

func TestValidateRejectsStructureBeforeReplay(t *testing.T) {
	tr := &trace.Trace{
		EndContent: "a",
		Txns:       append(single(p(0, 0, "a", time0)), trace.Txn{}),
	}
	sum, err := New(Config{}).Validate(tr)
	require.ErrorIs(t, err, engine.ErrMalformedTrace)
	require.ErrorIs(t, err, trace.ErrEmptyTxn)

	var me *engine.MalformedTraceError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, trace.Location{Txn: 1, Patch: -1}, me.Loc)
	assert.Equal(t, 0, sum.Txns, "nothing is replayed")

	tr = &trace.Trace{Txns: single(p(0, -1, "", time0))}
	_, err = New(Config{}).Validate(tr)
	require.ErrorIs(t, err, trace.ErrNegativeValue)
}

func TestValidateNoTransactions(t *testing.T) {
	tr := &trace.Trace{StartContent: "same", EndContent: "same"}
	sum, err := New(Config{}).Validate(tr)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.EndLen)
}

func TestValidateReplace(t *testing.T) {
	tr := &trace.Trace{StartContent: "ab", EndContent: "x", Txns: single(p(0, 2, "x", time0))}
	_, err := New(Config{}).Validate(tr)
	require.NoError(t, err)
}

func TestValidateTimeOrder(t *testing.T) {
	ordered := &trace.Trace{EndContent: "ab", Txns: single(p(0, 0, "a", time0), p(1, 0, "b", time1))}
	reversed := &trace.Trace{EndContent: "ab", Txns: single(p(0, 0, "a", time1), p(1, 0, "b", time0))}

	_, err := New(Config{TimeOrder: TimeOrderStrict}).Validate(ordered)
	require.NoError(t, err)

	_, err = New(Config{TimeOrder: TimeOrderStrict}).Validate(reversed)
	require.ErrorIs(t, err, ErrTimeOrder)
	var te *TimeOrderError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, trace.Location{Txn: 1, Patch: 0}, te.Loc)
	assert.Equal(t, trace.Location{Txn: 0, Patch: 0}, te.PrevLoc)

	_, err = New(Config{TimeOrder: TimeOrderOff}).Validate(reversed)
	require.NoError(t, err, "ordering is not checked unless strict")
}

func TestValidateTimeOrderWithinTransaction(t *testing.T) {
	tr := &trace.Trace{
		EndContent: "ab",
		Txns:       []trace.Txn{{Patches: []trace.Patch{p(0, 0, "a", time1), p(1, 0, "b", time0)}}},
	}
	_, err := New(Config{TimeOrder: TimeOrderStrict}).Validate(tr)
	require.ErrorIs(t, err, ErrTimeOrder)
}

func TestValidateInvalidTimestamp(t *testing.T) {
	tr := &trace.Trace{
		EndContent: "ab",
		Txns:       single(p(0, 0, "a", time0), p(1, 0, "b", "not a time")),
	}
	sum, err := New(Config{}).Validate(tr)
	require.ErrorIs(t, err, ErrInvalidTimestamp)
	assert.ErrorIs(t, err, trace.ErrBadTimestamp)

	var ie *InvalidTimestampError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, trace.Location{Txn: 1, Patch: 0}, ie.Loc)
	assert.Equal(t, "not a time", ie.Raw)
	assert.Equal(t, 1, sum.Txns)
}

func TestValidateMalformed(t *testing.T) {
	tr := &trace.Trace{StartContent: "ab", EndContent: "ab", Txns: single(p(1, 5, "", time0))}
	_, err := New(Config{}).Validate(tr)
	require.ErrorIs(t, err, engine.ErrMalformedTrace)
	assert.ErrorIs(t, err, buffer.ErrOutOfBounds)
}

func TestValidateContentMismatch(t *testing.T) {
	tr := &trace.Trace{
		StartContent: "hello world",
		EndContent:   "hello there world",
		Txns:         single(p(6, 0, "thee ", time0)),
	}
	_, err := New(Config{ContextWindow: 4}).Validate(tr)
	require.ErrorIs(t, err, ErrContentMismatch)

	var cm *ContentMismatchError
	require.True(t, errors.As(err, &cm))
	assert.Equal(t, 9, cm.Pos)
	assert.Equal(t, 17, cm.ExpectedLen)
	assert.Equal(t, 16, cm.ActualLen)
	assert.Equal(t, 5, cm.ExcerptStart)
	assert.Equal(t, " there w", cm.Expected)
	assert.Equal(t, " thee wo", cm.Actual)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		actual   string
		expected string
		pos      int
	}{
		{"equal", "a😀b", "a😀b", -1},
		{"both empty", "", "", -1},
		{"differs after astral", "😀ab", "😀ac", 2},
		{"actual shorter", "ab", "abc", 2},
		{"actual longer", "abcd", "abc", 3},
		{"first char", "x", "y", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(rope.FromString(tt.actual), tt.expected, 2)
			if tt.pos < 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.pos, got.Pos)
		})
	}
}

func TestCompareExcerptsUseCodePoints(t *testing.T) {
	got := Compare(rope.FromString("😀😀😀X😀😀"), "😀😀😀Y😀😀", 2)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Pos)
	assert.Equal(t, "😀😀Y😀", got.Expected)
	assert.Equal(t, "😀😀X😀", got.Actual)
}

func TestParseTimeOrderMode(t *testing.T) {
	m, err := ParseTimeOrderMode("strict")
	require.NoError(t, err)
	assert.Equal(t, TimeOrderStrict, m)

	m, err = ParseTimeOrderMode("")
	require.NoError(t, err)
	assert.Equal(t, TimeOrderOff, m)

	_, err = ParseTimeOrderMode("sometimes")
	assert.Error(t, err)
}

func TestValidateProgress(t *testing.T) {
	tr := &trace.Trace{}
	for i := 0; i < 5; i++ {
		tr.Txns = append(tr.Txns, single(p(i, 0, "x", time0))...)
	}
	tr.EndContent = "xxxxx"

	var done []int
	_, err := New(Config{ProgressEvery: 2, Progress: func(d, total int) { done = append(done, d) }}).Validate(tr)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, 5}, done)
}
