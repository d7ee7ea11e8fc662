package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the bundler CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Pretty renders Version with colored major, minor and patch parts. Anything
// that does not look like a semantic version is returned as is.
func Pretty(colored bool) string {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	core, suffix := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, suffix = v[:i], v[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	paint := []*color.Color{versionMajorColor, versionMinorColor, versionPatchColor}
	for i, part := range parts {
		c := *paint[i]
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(part)
	}
	return strings.Join(parts, ".") + suffix
}
