package buildpipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bundler/internal/diag"
	"bundler/internal/graph"
	"bundler/internal/module"
	"bundler/internal/observ"
	"bundler/internal/resolve"
	"bundler/internal/source"
	"bundler/internal/trace"
)

type pendingEdge struct {
	from module.ID
	to   module.ID
	dep  module.Dependency
}

// Session owns a module graph across builds. Build populates it; Rebuild
// reprocesses only changed files and whatever they newly import.
type Session struct {
	req     Request
	salt    string
	entries map[module.ID]struct{}

	files    *source.FileSet
	graph    *graph.Graph
	resolver *resolve.Resolver
	timer    *observ.Timer

	mu    sync.Mutex
	seen  map[module.ID]struct{}
	edges map[module.ID][]pendingEdge
	diags map[module.ID][]diag.Diagnostic
	stats struct{ processed, hits int }
}

// NewSession prepares a session for req.
func NewSession(req *Request) *Session {
	r := *req
	if r.Jobs <= 0 {
		r.Jobs = runtime.GOMAXPROCS(0)
	}
	if r.Resolver == nil {
		r.Resolver = resolve.New()
	}
	s := &Session{
		req:      r,
		salt:     r.Define.Fingerprint() + "\x00" + r.Inject.Fingerprint(),
		entries:  make(map[module.ID]struct{}, len(r.Entries)),
		files:    source.NewFileSetWithBase(r.Root),
		graph:    graph.New(),
		resolver: r.Resolver,
		seen:     make(map[module.ID]struct{}),
		edges:    make(map[module.ID][]pendingEdge),
		diags:    make(map[module.ID][]diag.Diagnostic),
	}
	for _, e := range r.Entries {
		s.entries[idForPath(e)] = struct{}{}
	}
	return s
}

// Build runs a full build of req.
func Build(ctx context.Context, req *Request) (*Result, error) {
	return NewSession(req).Build(ctx)
}

// Graph returns the session graph.
func (s *Session) Graph() *graph.Graph { return s.graph }

// Build processes every module reachable from the entries.
func (s *Session) Build(ctx context.Context) (*Result, error) {
	if len(s.entries) == 0 {
		return nil, ErrNoEntries
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build")
	defer span.End("")

	s.begin()
	frontier := make([]module.ID, 0, len(s.entries))
	for id := range s.entries {
		frontier = append(frontier, id)
	}
	if err := s.run(ctx, frontier); err != nil {
		return nil, err
	}
	return s.finish(ctx, span)
}

// Rebuild reprocesses the files at changed. Handles of untouched modules stay
// valid. Modules no longer reachable from an entry are dropped.
func (s *Session) Rebuild(ctx context.Context, changed []string) (*Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "rebuild")
	defer span.End("")

	s.begin()
	s.resolver.Reset()

	var frontier []module.ID
	for _, p := range changed {
		id := idForPath(p)
		_, isEntry := s.entries[id]
		dependents, err := s.graph.Dependents(id)
		if err != nil && !errors.Is(err, graph.ErrModuleNotFound) {
			return nil, err
		}
		if s.graph.HasModule(id) {
			if _, err := s.graph.RemoveModule(id); err != nil {
				return nil, &GraphError{Module: id, Err: err}
			}
		}
		s.forget(id)
		if isEntry || len(dependents) > 0 {
			frontier = append(frontier, id)
		}
	}
	if err := s.run(ctx, frontier); err != nil {
		return nil, err
	}
	return s.finish(ctx, span)
}

func (s *Session) begin() {
	s.timer = observ.NewTimer()
	s.stats.processed, s.stats.hits = 0, 0
}

func (s *Session) forget(id module.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, id)
	delete(s.edges, id)
	delete(s.diags, id)
}

// claim marks id as scheduled and reports whether the caller owns it.
func (s *Session) claim(id module.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// run processes frontier breadth-first. Each wave runs on an errgroup limited
// to Jobs; the modules a wave discovers form the next wave.
func (s *Session) run(ctx context.Context, frontier []module.ID) error {
	idx := s.timer.Begin("modules")
	defer func() { s.timer.End(idx, strconv.Itoa(s.stats.processed)+" processed") }()

	var wave []module.ID
	for _, id := range frontier {
		if s.claim(id) {
			wave = append(wave, id)
		}
	}

	for depth := 0; len(wave) > 0; depth++ {
		slices.Sort(wave)
		for _, id := range wave {
			emit(s.req.Progress, Event{File: s.display(id), Stage: StageLoad, Status: StatusQueued})
		}
		wctx, span := trace.Start(ctx, trace.ScopePass, "wave")
		span.WithExtra("depth", strconv.Itoa(depth)).WithExtra("modules", strconv.Itoa(len(wave)))

		found := make([][]module.ID, len(wave))
		g, gctx := errgroup.WithContext(wctx)
		g.SetLimit(min(s.req.Jobs, len(wave)))
		for i, id := range wave {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				next, err := s.process(gctx, id)
				found[i] = next
				return err
			})
		}
		err := g.Wait()
		span.End("")
		if err != nil {
			return err
		}

		wave = wave[:0:0]
		for _, ids := range found {
			for _, id := range ids {
				if s.claim(id) {
					wave = append(wave, id)
				}
			}
		}
	}
	return ctx.Err()
}

// finish commits edges, prunes unreachable modules and assembles the Result.
func (s *Session) finish(ctx context.Context, span *trace.Span) (*Result, error) {
	commitStart := time.Now()
	_, cspan := trace.Start(ctx, trace.ScopePass, "commit")
	if err := s.commit(); err != nil {
		cspan.End(err.Error())
		emit(s.req.Progress, Event{Stage: StageCommit, Status: StatusError, Err: err})
		return nil, err
	}
	removed, err := s.prune()
	if err != nil {
		cspan.End(err.Error())
		return nil, err
	}
	cspan.WithExtra("pruned", strconv.Itoa(removed)).End("")
	s.timer.Add(string(StageCommit), time.Since(commitStart))
	emit(s.req.Progress, Event{Stage: StageCommit, Status: StatusDone, Elapsed: time.Since(commitStart)})

	res := &Result{
		Graph:     s.graph,
		Files:     s.files,
		Bag:       s.collect(),
		Order:     s.graph.Toposort(),
		Modules:   s.graph.Len(),
		Processed: s.stats.processed,
		CacheHits: s.stats.hits,
	}
	if res.Order.Cyclic {
		names := make([]string, len(res.Order.Cycles))
		for i, id := range res.Order.Cycles {
			names[i] = s.display(id)
		}
		res.Bag.Add(diag.New(diag.SevWarning, diag.GraphCycle, string(res.Order.Cycles[0]), source.Span{},
			fmt.Sprintf("circular dependency between %d modules: %v", len(names), names)))
	}
	for _, p := range s.timer.Report().Phases {
		res.Timings.Set(Stage(p.Name), time.Duration(p.DurationMS*float64(time.Millisecond)))
	}
	span.WithExtra("modules", strconv.Itoa(res.Modules)).WithExtra("cache_hits", strconv.Itoa(res.CacheHits))

	if res.Bag.HasErrors() {
		return res, ErrBuildFailed
	}
	return res, nil
}

// commit adds every recorded edge in (from, order) order. AddDependency
// upserts, so edges that survived a rebuild are rewritten in place.
func (s *Session) commit() error {
	s.mu.Lock()
	all := make([]pendingEdge, 0, len(s.edges))
	for _, es := range s.edges {
		all = append(all, es...)
	}
	s.mu.Unlock()

	slices.SortFunc(all, func(a, b pendingEdge) int {
		if c := cmp.Compare(a.from, b.from); c != 0 {
			return c
		}
		return cmp.Compare(a.dep.Order, b.dep.Order)
	})
	for _, e := range all {
		if _, err := s.graph.AddDependency(e.from, e.to, e.dep); err != nil {
			return &GraphError{Module: e.from, Err: err}
		}
	}
	return nil
}

// prune removes modules that no entry reaches anymore.
func (s *Session) prune() (int, error) {
	s.mu.Lock()
	reach := make(map[module.ID]struct{}, len(s.seen))
	queue := make([]module.ID, 0, len(s.entries))
	for id := range s.entries {
		reach[id] = struct{}{}
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range s.edges[id] {
			if _, ok := reach[e.to]; !ok {
				reach[e.to] = struct{}{}
				queue = append(queue, e.to)
			}
		}
	}
	s.mu.Unlock()

	removed := 0
	for _, id := range s.graph.ModuleIDs() {
		if _, ok := reach[id]; ok {
			continue
		}
		if _, err := s.graph.RemoveModule(id); err != nil {
			return removed, &GraphError{Module: id, Err: err}
		}
		s.forget(id)
		removed++
	}
	return removed, nil
}

// collect gathers the diagnostics of every module in the graph in ID order.
func (s *Session) collect() *diag.Bag {
	bag := diag.NewBag(s.req.MaxDiagnostics)
	s.mu.Lock()
	ids := make([]module.ID, 0, len(s.diags))
	for id := range s.diags {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	// dedup before the bag applies its limit
	r := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for _, id := range ids {
		for _, d := range s.diags[id] {
			r.Report(d)
		}
	}
	s.mu.Unlock()
	bag.Sort()
	return bag
}

func (s *Session) display(id module.ID) string {
	if id.IsExternal() || s.req.Root == "" {
		return string(id)
	}
	if rel, err := filepath.Rel(s.req.Root, filepath.FromSlash(string(id))); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return string(id)
}

func idForPath(p string) module.ID {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return module.ID(filepath.ToSlash(filepath.Clean(p)))
}
