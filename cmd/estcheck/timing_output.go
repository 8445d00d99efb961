package main

import (
	"fmt"
	"io"

	"estcheck/internal/driver"
)

func printTimings(out io.Writer, results []driver.DiagnoseResult) {
	if out == nil {
		return
	}
	report, files := driver.TimingReport(results)
	if files == 0 {
		return
	}
	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}
	fmt.Fprintf(out, "checked %d files (%d cached)\n", files, cached)
	fmt.Fprint(out, report.Summary())
}
