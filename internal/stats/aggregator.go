// Package stats computes descriptive statistics of editing behaviour from a
// trace in a single ordered pass, without replaying it.
package stats

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/editrace/internal/trace"
)

// DefaultSampleCap is the default number of distinct non-ASCII characters
// kept as examples.
const DefaultSampleCap = 16

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithSampleCap sets how many distinct non-ASCII characters are retained.
func WithSampleCap(n int) Option {
	return func(a *Aggregator) {
		if n >= 0 {
			a.sampleCap = n
		}
	}
}

// Aggregator accumulates statistics one transaction at a time. Transactions
// must be added in trace order: run and replace detection depend on the
// preceding patch. An Aggregator is owned by one goroutine.
type Aggregator struct {
	sampleCap int
	r         Report

	// lastPos is where the previous edit left the caret: the end of the
	// previous insertion, or the position of the previous deletion.
	lastPos int
}

// NewAggregator creates an empty aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{sampleCap: DefaultSampleCap, lastPos: -1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetContent records the document lengths at both ends of the trace.
func (a *Aggregator) SetContent(start, end string) {
	a.r.StartLen = utf8.RuneCountInString(start)
	a.r.EndLen = utf8.RuneCountInString(end)
}

// AddTxn folds one transaction into the statistics.
func (a *Aggregator) AddTxn(txn trace.Txn) {
	r := &a.r
	r.Txns++
	r.Patches += len(txn.Patches)
	single := len(txn.Patches) == 1
	if single {
		r.SingleTxns++
	}

	var hasInsert, hasDelete, hasReplace bool
	for _, p := range txn.Patches {
		if p.Ins != "" {
			n := a.addInsertion(p.Ins)
			r.Inserts++
			r.CharsInserted += n
			r.LongestInsert = max(r.LongestInsert, n)
			if n == 1 {
				r.InsertsOfLength1++
				if single {
					r.PureSingleCharTxns++
				}
			}
			// Previous edit is not checked to be an insert.
			if single && n == 1 && p.Pos == a.lastPos {
				r.Runs++
			}
			a.lastPos = p.Pos + n

			if p.Del == 0 {
				hasInsert = true
				r.InsertOnly++
			} else {
				hasReplace = true
				r.Replaces++
			}
		}

		if p.Del > 0 {
			r.Deletes++
			r.CharsDeleted += p.Del
			r.LongestDelete = max(r.LongestDelete, p.Del)
			a.lastPos = p.Pos
			if p.Ins == "" {
				hasDelete = true
				r.DeleteOnly++
			}
		}
	}

	if hasInsert {
		r.TxnsWithInsert++
	}
	if hasDelete {
		r.TxnsWithDelete++
	}
	if hasReplace {
		r.TxnsWithReplace++
	}
}

// addInsertion scans inserted text for non-ASCII characters and returns its
// length in code points.
func (a *Aggregator) addInsertion(s string) int {
	r := &a.r
	r.GraphemesInserted += uniseg.GraphemeClusterCount(s)

	n := 0
	for _, c := range s {
		n++
		if c < utf8.RuneSelf {
			continue
		}
		r.NonASCIIInserted++
		if c > 0xFFFF {
			r.AstralInserted++
		}
		a.sample(c)
	}
	return n
}

// sample keeps c if it is new and the sample has room.
func (a *Aggregator) sample(c rune) {
	if len(a.r.NonASCIISample) >= a.sampleCap {
		return
	}
	s := string(c)
	for _, have := range a.r.NonASCIISample {
		if have == s {
			return
		}
	}
	a.r.NonASCIISample = append(a.r.NonASCIISample, s)
}

// Report returns the statistics gathered so far. The aggregator may keep
// accumulating afterwards; earlier reports are unaffected.
func (a *Aggregator) Report() Report {
	r := a.r
	r.NonASCIISample = append([]string(nil), a.r.NonASCIISample...)
	r.Keystrokes = r.CharsInserted + r.CharsDeleted

	r.MeanPatchesPerTxn = ratio(r.Patches, r.Txns)
	r.SingleTxnFraction = ratio(r.SingleTxns, r.Txns)
	r.InsertTxnFraction = ratio(r.TxnsWithInsert, r.Txns)
	r.DeleteTxnFraction = ratio(r.TxnsWithDelete, r.Txns)
	r.ReplaceTxnFraction = ratio(r.TxnsWithReplace, r.Txns)
	r.InsertPatchFraction = ratio(r.Inserts, r.Patches)
	r.DeletePatchFraction = ratio(r.Deletes, r.Patches)
	r.MeanInsertLength = ratio(r.CharsInserted, r.Inserts)
	r.InsertLength1Fraction = ratio(r.InsertsOfLength1, r.Inserts)
	r.PureSingleCharFraction = ratio(r.PureSingleCharTxns, r.Txns)
	r.RunFraction = ratio(r.Runs, r.Inserts)
	return r
}

// Analyze computes the report for a whole trace.
func Analyze(tr *trace.Trace, opts ...Option) Report {
	a := NewAggregator(opts...)
	a.SetContent(tr.StartContent, tr.EndContent)
	for _, txn := range tr.Txns {
		a.AddTxn(txn)
	}
	return a.Report()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
