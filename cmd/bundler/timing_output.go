package main

import (
	"fmt"
	"io"
	"time"

	"bundler/internal/buildpipeline"
)

// printStageTimings prints the recorded stages in pipeline order. Per-module
// stages show work time summed over modules.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "%-8s %.1f ms\n", stage, toMillis(timings.Duration(stage)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
