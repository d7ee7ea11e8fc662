package diag

import (
	"testing"

	"bundler/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSetWithBase("/workspace")
	fs.Add("/workspace/src/main.js", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     ResUnresolved,
			Message:  "another",
			Path:     "/workspace/src/main.js",
			Primary:  source.Span{Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SynParseError,
			Message:  "first line\nsecond",
			Path:     "/workspace/src/main.js",
			Primary:  source.Span{Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevError,
			Code:     CfgInvalidDefine,
			Message:  "define value '{a:1}' is not an expression",
			Path:     "/workspace/bundler.toml",
		},
	}

	expected := "error CFG1002 bundler.toml:0:0 define value '{a:1}' is not an expression\n" +
		"error SYN2001 src/main.js:1:1 first line second\n" +
		"note SYN2001 src/main.js:2:1 note line\n" +
		"warning RES3001 src/main.js:2:1 another"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagLimitAndDedup(t *testing.T) {
	b := NewBag(2)
	d := Errorf(ResUnresolved, "/a.js", "cannot resolve %q", "./x")
	if !b.Add(d) || !b.Add(d) {
		t.Fatalf("first two adds must succeed")
	}
	if b.Add(d) {
		t.Fatalf("limit not enforced")
	}
	if b.Dropped() != 1 {
		t.Fatalf("got %d dropped, want 1", b.Dropped())
	}
	b.Dedup()
	if b.Len() != 1 || !b.HasErrors() {
		t.Fatalf("got len=%d errors=%v", b.Len(), b.HasErrors())
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: b})
	for range 3 {
		ReportError(r, ResUnresolved, "/a.js", source.Span{Start: 1, End: 4}, "cannot resolve").Emit()
	}
	ReportWarning(r, ResUnresolved, "/b.js", source.Span{Start: 1, End: 4}, "cannot resolve").Emit()
	if b.Len() != 2 {
		t.Fatalf("got %d diagnostics, want 2", b.Len())
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		CfgInvalidDefine: "CFG1002", SynParseError: "SYN2001", ResUnresolved: "RES3001",
		GraphCycle: "GRF4003", IOLoadFileError: "IO5001", UnknownCode: "E0000",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Fatalf("got %s, want %s", got, want)
		}
	}
}
