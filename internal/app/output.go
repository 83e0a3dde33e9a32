package app

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/editrace/internal/batch"
)

// render writes sum to stdout in the configured format.
func (app *Application) render(sum *batch.Summary) error {
	if sum == nil {
		return nil
	}
	switch app.opts.Format {
	case "json":
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case "yaml":
		enc := yaml.NewEncoder(app.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(sum); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(app.stdout, sum)
	}
}

func writeText(w io.Writer, sum *batch.Summary) error {
	for _, f := range sum.Files {
		var err error
		switch f.Status {
		case batch.StatusPassed:
			if f.Summary != nil {
				_, err = fmt.Fprintf(w, "ok      %s (%d txns, %d patches, %d -> %d chars)\n",
					f.Path, f.Summary.Txns, f.Summary.Patches, f.Summary.StartLen, f.Summary.EndLen)
			} else {
				_, err = fmt.Fprintf(w, "ok      %s\n", f.Path)
			}
		case batch.StatusRejected:
			_, err = fmt.Fprintf(w, "REJECT  %s: %s\n", f.Path, f.Verdict.Reason)
		case batch.StatusCanceled:
			_, err = fmt.Fprintf(w, "SKIP    %s\n", f.Path)
		default:
			_, err = fmt.Fprintf(w, "FAIL    %s: %s\n", f.Path, f.Error)
		}
		if err != nil {
			return err
		}
		if f.Report != nil {
			if _, err := fmt.Fprintf(w, "\n== %s ==\n", f.Path); err != nil {
				return err
			}
			if err := f.Report.WriteText(w); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d passed, %d failed, %d rejected (run %s, %s)\n",
		sum.Passed, sum.Failed, sum.Rejected, sum.RunID, sum.Elapsed.Round(time.Millisecond))
	return err
}
