package buildpipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteOutput writes the transformed code of every file module under outDir,
// mirroring its path relative to root. Modules outside root are skipped.
// It returns the written paths in module ID order.
func WriteOutput(res *Result, root, outDir string) ([]string, error) {
	if res == nil || res.Graph == nil {
		return nil, nil
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	var written []string
	for _, id := range res.Graph.ModuleIDs() {
		m, ok := res.Graph.Module(id)
		if !ok || m.IsExternal || m.File == nil {
			continue
		}
		if m.Code == "" && len(m.File.Content) > 0 {
			// not transformed
			continue
		}
		rel, err := filepath.Rel(root, filepath.FromSlash(m.Path))
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		dst := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return written, fmt.Errorf("failed to create %q: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, []byte(m.Code), 0o600); err != nil {
			return written, fmt.Errorf("failed to write build output %q: %w", dst, err)
		}
		written = append(written, dst)
	}
	return written, nil
}
