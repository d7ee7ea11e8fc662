package module

import "testing"

func TestExternalIDs(t *testing.T) {
	m := NewExternal("react")
	if m.ID != "external:react" || !m.ID.IsExternal() || !m.IsExternal {
		t.Fatalf("unexpected external module %+v", m)
	}
	if ID("/src/a.js").IsExternal() {
		t.Fatalf("file path reported as external")
	}
}

func TestKindStrings(t *testing.T) {
	if got := DepExportFrom.String(); got != "export-from" {
		t.Fatalf("DepExportFrom = %q", got)
	}
	if got := FormatCJS.String(); got != "cjs" {
		t.Fatalf("FormatCJS = %q", got)
	}
}
