package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bundler/internal/ast"
	"bundler/internal/cache"
	"bundler/internal/define"
	"bundler/internal/deps"
	"bundler/internal/diag"
	"bundler/internal/inject"
	"bundler/internal/module"
	"bundler/internal/parser"
	"bundler/internal/resolve"
	"bundler/internal/source"
	"bundler/internal/symbols"
	"bundler/internal/trace"
)

// moduleTask carries the state of one module through the stages.
type moduleTask struct {
	s      *Session
	m      *module.Module
	file   string
	diags  []diag.Diagnostic
	edges  []pendingEdge
	next   []module.ID
	stage  Stage
	start  time.Time
	cached bool
}

// process transforms one module, adds it to the graph and returns the IDs it
// depends on. Per-module failures become diagnostics; only graph errors and
// cancellation are returned.
func (s *Session) process(ctx context.Context, id module.ID) ([]module.ID, error) {
	ctx, span := trace.Start(ctx, trace.ScopeModule, "module")
	defer span.End("")
	span.WithExtra("id", string(id))

	t := &moduleTask{s: s, file: s.display(id)}
	if id.IsExternal() {
		t.m = module.NewExternal(string(id)[len(module.ExternalPrefix):])
	} else {
		t.m = module.New(id, string(id))
		_, t.m.IsEntry = s.entries[id]
		t.transform(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.graph.AddModule(t.m); err != nil {
		return nil, &GraphError{Module: id, Err: err}
	}

	s.mu.Lock()
	s.edges[id] = t.edges
	if len(t.diags) > 0 {
		s.diags[id] = t.diags
	}
	if !id.IsExternal() {
		s.stats.processed++
		if t.cached {
			s.stats.hits++
		}
	}
	s.mu.Unlock()

	status := StatusDone
	switch {
	case hasError(t.diags):
		status = StatusError
	case t.cached:
		status = StatusCached
		span.WithExtra("cached", "true")
	}
	if !id.IsExternal() {
		emit(s.req.Progress, Event{File: t.file, Stage: StageAnalyze, Status: status})
	}
	return t.next, nil
}

func (t *moduleTask) enter(stage Stage) {
	t.finishStage()
	t.stage = stage
	t.start = time.Now()
	emit(t.s.req.Progress, Event{File: t.file, Stage: stage, Status: StatusWorking})
}

func (t *moduleTask) finishStage() {
	if t.stage == "" {
		return
	}
	t.s.timer.Add(string(t.stage), time.Since(t.start))
	t.stage = ""
}

func (t *moduleTask) fail(err error) {
	stage, elapsed := t.stage, time.Since(t.start)
	t.finishStage()
	emit(t.s.req.Progress, Event{File: t.file, Stage: stage, Status: StatusError, Err: err, Elapsed: elapsed})
}

// Report implements diag.Reporter; a task owns its diagnostics until the
// module is committed.
func (t *moduleTask) Report(d diag.Diagnostic) {
	t.diags = append(t.diags, d)
}

// transform runs load, parse, resolve, define, inject and analyze. A cache
// hit replaces everything between load and specifier resolution.
func (t *moduleTask) transform(ctx context.Context) {
	s, m := t.s, t.m
	defer t.finishStage()

	t.enter(StageLoad)
	fid, err := s.files.Load(m.Path)
	if err != nil {
		diag.ReportError(t, diag.IOLoadFileError, m.Path, source.Span{}, "failed to load file: "+err.Error()).Emit()
		t.fail(err)
		return
	}
	m.File = s.files.Get(fid)
	m.ContentHash = m.File.Hash
	key := cache.Key(m.ContentHash, m.Path, s.salt)

	if p, ok := s.req.Cache.Get(key); ok {
		p.Apply(m)
		t.cached = true
		trace.Point(trace.FromContext(ctx), trace.ScopeModule, "cache-hit", t.file, trace.SpanID(ctx))
	} else {
		replaced, ok := t.compile(ctx)
		if !ok {
			return
		}
		if err := s.req.Cache.Put(key, cache.FromModule(m, replaced)); err != nil {
			diag.ReportWarning(t, diag.IOCacheError, m.Path, source.Span{}, "cache write failed: "+err.Error()).Emit()
		}
	}

	if t.cached {
		t.enter(StageAnalyze)
	}
	t.link()
}

// compile parses m and applies the passes. It reports false when the module
// could not be parsed.
func (t *moduleTask) compile(ctx context.Context) (int, bool) {
	m := t.m

	t.enter(StageParse)
	program, err := parser.Parse(ctx, m.File)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			diag.ReportError(t, diag.SynParseError, m.Path, perr.Span, "syntax error").Emit()
		} else {
			diag.ReportError(t, diag.SynParseError, m.Path, source.Span{}, err.Error()).Emit()
		}
		t.fail(err)
		return 0, false
	}
	m.Program = program

	t.enter(StageResolve)
	m.Bindings = symbols.Resolve(program)

	t.enter(StageDefine)
	stats := define.Replace(program, m.Bindings, t.s.req.Define)
	if stats.Total() > 0 {
		trace.Point(trace.FromContext(ctx), trace.ScopeNode, "define", strconv.Itoa(stats.Total())+" replaced", trace.SpanID(ctx))
	}

	t.enter(StageInject)
	injected := inject.Inject(program, m.Bindings, t.s.req.Inject, m.Path)
	m.Injected = injected.Injected
	m.Format = injected.Format

	t.enter(StageAnalyze)
	m.Code = ast.Print(program)
	m.Deps = deps.Analyze(program, m.Bindings)
	return stats.Total(), true
}

// link resolves every dependency specifier of m into an edge.
func (t *moduleTask) link() {
	m := t.m
	for _, dep := range m.Deps {
		to, err := t.s.resolver.Resolve(m.Path, dep.Specifier)
		if err != nil {
			b := diag.ReportError(t, diag.ResUnresolved, m.Path, dep.Span, err.Error())
			var uerr *resolve.UnresolvedError
			if errors.As(err, &uerr) {
				b = diag.ReportError(t, diag.ResUnresolved, m.Path, dep.Span, fmt.Sprintf("cannot resolve %q", dep.Specifier))
				if n := len(uerr.Tried); n > 0 {
					note := "tried " + uerr.Tried[0]
					if n > 1 {
						note += fmt.Sprintf(" and %d other paths", n-1)
					}
					b.WithNote(dep.Span, note)
				}
			}
			b.Emit()
			continue
		}
		t.edges = append(t.edges, pendingEdge{from: m.ID, to: to, dep: dep})
		t.next = append(t.next, to)
	}
}

func hasError(ds []diag.Diagnostic) bool {
	for _, d := range ds {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}
