package main

import (
	"fmt"
	"io"

	"leo/internal/driver"
)

func printTimings(out io.Writer, results []driver.RunResult) {
	if out == nil {
		return
	}
	for _, r := range results {
		if r.Timer == nil {
			continue
		}
		if len(results) > 1 {
			fmt.Fprintf(out, "%s\n", r.Path)
		}
		fmt.Fprint(out, r.Timer.Summary())
	}
}
