package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerAccumulatesStages(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("build")
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add("parse", time.Millisecond)
		}()
	}
	wg.Wait()
	tm.End(idx, "2 modules")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(r.Phases))
	}
	parse := r.Phases[1]
	if parse.Name != "parse" || parse.Count != 4 || parse.DurationMS != 4 {
		t.Fatalf("unexpected parse phase %+v", parse)
	}
	if r.TotalMS != r.Phases[0].DurationMS {
		t.Fatalf("total %v must only count sequential phases (%v)", r.TotalMS, r.Phases[0].DurationMS)
	}
	if s := tm.Summary(); !strings.Contains(s, "x4") || !strings.Contains(s, "// 2 modules") {
		t.Fatalf("unexpected summary:\n%s", s)
	}
}

func TestEmptyReport(t *testing.T) {
	if r := NewTimer().Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("got %+v", r)
	}
}
