// Package buildinfo exposes the version metadata stamped into the qap binary
// at build time via -ldflags. The cli package variables are honored as a
// fallback so external build scripts keep working.
package buildinfo

import "github.com/goqap/qap/cli"

var (
	// Version is the release version, "dev" for unstamped builds.
	Version = "dev"
	// Commit is the VCS commit hash, shortened for display.
	Commit = ""
	// Date is the build timestamp.
	Date = ""
	// BuiltBy identifies the builder (CI job, release tool).
	BuiltBy = ""
)

// Summary is the single-line version string shown by `qap version`: the
// version itself, plus the short commit and build date when stamped.
func Summary() string {
	v := Version
	if v == "" {
		v = cli.Version
	}
	if v == "" {
		v = "dev"
	}
	if c := shortCommit(); c != "" {
		v += "+" + c
	}
	d := Date
	if d == "" {
		d = cli.Date
	}
	if d != "" {
		v += " (built " + d + ")"
	}
	return v
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
