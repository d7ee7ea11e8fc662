package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 16 << 10
)

var builtinSeeds = []string{
	"",
	"import a from \"./a\";\nexport default a;\n",
	"#!/usr/bin/env node\nconst fs = require('fs');\nmodule.exports = fs;\n",
	"if (process.env.NODE_ENV === \"production\") { console.log(DEBUG); }\n",
	"const { MODE } = import.meta.env;\nconsole.log(import.meta.env.MODE, import.meta.env);\n",
	"let $ = 1; function f() { return $(\"#x\"); }\n",
	"export { x } from \"./x\";\nexport * as ns from \"./ns\";\n",
	"async function load() { const m = await import(\"./lazy\"); return m.default; }\n",
	"class A extends B { #p = 1; static { this.q = DEBUG; } }\n",
	"for (const k in obj) { process.env[k] = obj[k]; }\n",
	"const V = () => <div className={DEBUG ? \"a\" : \"b\"}>{$.now()}</div>;\n",
	"label: for (;;) { try { break label; } catch { continue; } finally {} }\n",
	"x?.y?.[z]?.(w) ?? q;\n",
	"`a${process.env.API}b`;\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".js", ".mjs", ".cjs", ".jsx":
		default:
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
