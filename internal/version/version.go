// Package version holds build information for the phpsniff CLI. The
// variables can be overridden at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders Version with its major, minor and patch parts coloured.
// Values that are not dotted triples are returned unchanged.
func Colored(useColor bool) string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	paint := func(c *color.Color, s string) string {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.Sprint(s)
	}
	out := paint(versionMajorColor, parts[0]) + "." + paint(versionMinorColor, parts[1]) + "." + paint(versionPatchColor, parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Info is the multi-line text printed by `phpsniff version`.
func Info(useColor bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "phpsniff %s\n", Colored(useColor))
	if GitCommit != "" {
		fmt.Fprintf(&b, "commit:  %s\n", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, "built:   %s\n", BuildDate)
	}
	fmt.Fprintf(&b, "go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return b.String()
}
