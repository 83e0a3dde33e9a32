package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Report holds the statistics for one trace. Fractions are in [0, 1] and are
// zero when their denominator is zero. Lengths are in code points.
type Report struct {
	Txns              int     `json:"txns" yaml:"txns"`
	Patches           int     `json:"patches" yaml:"patches"`
	MeanPatchesPerTxn float64 `json:"mean_patches_per_txn" yaml:"mean_patches_per_txn"`

	SingleTxns        int     `json:"single_patch_txns" yaml:"single_patch_txns"`
	SingleTxnFraction float64 `json:"single_patch_txn_fraction" yaml:"single_patch_txn_fraction"`

	TxnsWithInsert     int     `json:"txns_with_insert" yaml:"txns_with_insert"`
	TxnsWithDelete     int     `json:"txns_with_delete" yaml:"txns_with_delete"`
	TxnsWithReplace    int     `json:"txns_with_replace" yaml:"txns_with_replace"`
	InsertTxnFraction  float64 `json:"insert_txn_fraction" yaml:"insert_txn_fraction"`
	DeleteTxnFraction  float64 `json:"delete_txn_fraction" yaml:"delete_txn_fraction"`
	ReplaceTxnFraction float64 `json:"replace_txn_fraction" yaml:"replace_txn_fraction"`

	Inserts             int     `json:"inserts" yaml:"inserts"`
	Deletes             int     `json:"deletes" yaml:"deletes"`
	InsertOnly          int     `json:"insert_only" yaml:"insert_only"`
	DeleteOnly          int     `json:"delete_only" yaml:"delete_only"`
	Replaces            int     `json:"replaces" yaml:"replaces"`
	InsertPatchFraction float64 `json:"insert_patch_fraction" yaml:"insert_patch_fraction"`
	DeletePatchFraction float64 `json:"delete_patch_fraction" yaml:"delete_patch_fraction"`

	CharsInserted    int     `json:"chars_inserted" yaml:"chars_inserted"`
	CharsDeleted     int     `json:"chars_deleted" yaml:"chars_deleted"`
	Keystrokes       int     `json:"keystrokes" yaml:"keystrokes"`
	LongestInsert    int     `json:"longest_insert" yaml:"longest_insert"`
	LongestDelete    int     `json:"longest_delete" yaml:"longest_delete"`
	MeanInsertLength float64 `json:"mean_insert_length" yaml:"mean_insert_length"`

	InsertsOfLength1       int     `json:"inserts_of_length_1" yaml:"inserts_of_length_1"`
	InsertLength1Fraction  float64 `json:"insert_length_1_fraction" yaml:"insert_length_1_fraction"`
	PureSingleCharTxns     int     `json:"pure_single_char_txns" yaml:"pure_single_char_txns"`
	PureSingleCharFraction float64 `json:"pure_single_char_fraction" yaml:"pure_single_char_fraction"`
	Runs                   int     `json:"runs" yaml:"runs"`
	RunFraction            float64 `json:"run_fraction" yaml:"run_fraction"`

	NonASCIIInserted  int      `json:"non_ascii_inserted" yaml:"non_ascii_inserted"`
	NonASCIISample    []string `json:"non_ascii_sample,omitempty" yaml:"non_ascii_sample,omitempty"`
	AstralInserted    int      `json:"astral_inserted" yaml:"astral_inserted"`
	GraphemesInserted int      `json:"graphemes_inserted" yaml:"graphemes_inserted"`

	StartLen int `json:"start_len" yaml:"start_len"`
	EndLen   int `json:"end_len" yaml:"end_len"`
}

// WriteText writes a human readable summary of r to w.
func (r Report) WriteText(w io.Writer) error {
	tw := &textWriter{w: w}

	tw.line(0, "There are %d txns taking the document from %d to %d characters", r.Txns, r.StartLen, r.EndLen)
	tw.line(0, "In total, there are %d characters inserted and %d characters deleted", r.CharsInserted, r.CharsDeleted)
	tw.line(0, "Or %d keystrokes", r.Keystrokes)
	tw.line(1, "%s txns of length 1. Mean length %s", pct(r.SingleTxnFraction), round2dp(r.MeanPatchesPerTxn))
	tw.line(1, "%s txns have insert", pct(r.InsertTxnFraction))
	tw.line(1, "%s txns have deletes", pct(r.DeleteTxnFraction))
	tw.line(1, "%s txns replace characters", pct(r.ReplaceTxnFraction))
	tw.blank()

	tw.line(0, "There are %d inserts (%s of patches insert text)", r.Inserts, pct(r.InsertPatchFraction))
	tw.line(1, "%s of inserts have length 1", pct(r.InsertLength1Fraction))
	tw.line(1, "%s average characters per insert", round2dp(r.MeanInsertLength))
	tw.line(1, "%s of txns just insert a single character", pct(r.PureSingleCharFraction))
	tw.line(1, "%s of inserts run on from the previous edit", pct(r.RunFraction))
	tw.line(1, "The longest insert inserts %d characters", r.LongestInsert)
	tw.blank()

	tw.line(0, "There are %d deletes (%s of patches delete text)", r.Deletes, pct(r.DeletePatchFraction))
	tw.line(1, "The longest delete deletes %d characters", r.LongestDelete)
	tw.line(1, "%d patches only insert, %d only delete, %d replace", r.InsertOnly, r.DeleteOnly, r.Replaces)
	tw.blank()

	tw.line(0, "There are %d non-ASCII characters inserted (%d outside the BMP)", r.NonASCIIInserted, r.AstralInserted)
	tw.line(1, "%d grapheme clusters inserted", r.GraphemesInserted)
	if len(r.NonASCIISample) > 0 {
		tw.line(1, "Examples: %s", strings.Join(r.NonASCIISample, " "))
	}
	return tw.err
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) line(depth int, format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, strings.Repeat("  ", depth)+format+"\n", args...)
}

func (t *textWriter) blank() {
	if t.err != nil {
		return
	}
	_, t.err = io.WriteString(t.w, "\n")
}

// round2dp formats x rounded to two decimal places without trailing zeros.
func round2dp(x float64) string {
	return strconv.FormatFloat(math.Round(x*100)/100, 'f', -1, 64)
}

func pct(f float64) string {
	return round2dp(f*100) + "%"
}
