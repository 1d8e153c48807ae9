// Package cli carries build-time variables kept at a stable import path for
// release scripts, e.g.:
//
//	-ldflags "-X 'github.com/goqap/qap/cli.Version=1.2.3' -X 'github.com/goqap/qap/cli.Date=2026-08-25'"
package cli

var (
	Version string
	Date    string
)
