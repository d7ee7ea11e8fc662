package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"bundler/internal/diag"
	"bundler/internal/source"
)

func decode(t *testing.T, buf *bytes.Buffer) DiagnosticsOutput {
	t.Helper()
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	return out
}

func TestJSONBasic(t *testing.T) {
	fs, path, id := newFileSet(t, "src/main.js", "import x from \"./x\";\nfoo(;\n")
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SynParseError, path, source.Span{File: id, Start: 25, End: 26}, "unexpected token"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	out := decode(t, &buf)

	if out.Count != 1 || out.Errors != 1 || out.Warnings != 0 {
		t.Fatalf("got count=%d errors=%d warnings=%d", out.Count, out.Errors, out.Warnings)
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SYN2001" || d.Message != "unexpected token" {
		t.Fatalf("got %+v", d)
	}
	want := LocationJSON{File: "src/main.js", StartByte: 25, EndByte: 26, StartLine: 2, StartCol: 5, EndLine: 2, EndCol: 6}
	if d.Location != want {
		t.Fatalf("got %+v, want %+v", d.Location, want)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs, path, id := newFileSet(t, "a.js", "x;\n")
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SynParseError, path, source.Span{File: id, Start: 0, End: 1}, "boom"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	loc := decode(t, &buf).Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 || loc.EndByte != 1 || loc.File != "a.js" {
		t.Fatalf("got %+v", loc)
	}
}

func TestJSONNotesAndMax(t *testing.T) {
	fs, path, id := newFileSet(t, "a.js", "import b from \"./b\";\n")
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevWarning, diag.GraphCycle, path, source.Span{File: id, Start: 14, End: 19}, "circular dependency").
		WithNote(source.Span{File: id, Start: 0, End: 6}, "imported here"))
	bag.Add(diag.Errorf(diag.CfgNoEntries, "", "no entry modules"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludeNotes: true, IncludePositions: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	out := decode(t, &buf)
	if out.Count != 2 || out.Errors != 1 || out.Warnings != 1 {
		t.Fatalf("got count=%d errors=%d warnings=%d", out.Count, out.Errors, out.Warnings)
	}
	notes := out.Diagnostics[0].Notes
	if len(notes) != 1 || notes[0].Message != "imported here" || notes[0].Location.StartCol != 1 {
		t.Fatalf("got notes %+v", notes)
	}
	if loc := out.Diagnostics[1].Location; loc != (LocationJSON{}) {
		t.Fatalf("config diagnostic has location %+v", loc)
	}

	buf.Reset()
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	out = decode(t, &buf)
	if out.Count != 1 || out.Diagnostics[0].Notes != nil {
		t.Fatalf("got %+v", out)
	}
}

func TestJSONNilBag(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil, nil, JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if out := decode(t, &buf); out.Count != 0 || out.Diagnostics == nil {
		t.Fatalf("got %+v", out)
	}
}
