package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCue(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.cue")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadAndValidateOK(t *testing.T) {
	path := writeCue(t, `configVersion: "1"`)
	if err := LoadAndValidate(path); err != nil {
		t.Fatalf("LoadAndValidate: %v", err)
	}
}

func TestLoadAndValidateRejectsWrongExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.yaml")
	if err := os.WriteFile(path, []byte(`configVersion: "1"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadAndValidate(path); err == nil {
		t.Fatal("expected error for non-cue file")
	}
}

func TestLoadAndValidateMissingVersion(t *testing.T) {
	path := writeCue(t, `root: "/x"`)
	if err := LoadAndValidate(path); err == nil {
		t.Fatal("expected error for missing configVersion")
	}
}

func TestLoadAndValidateWrongType(t *testing.T) {
	path := writeCue(t, `configVersion: 1`)
	if err := LoadAndValidate(path); err == nil {
		t.Fatal("expected error for non-string configVersion")
	}
}

func TestParseFull(t *testing.T) {
	path := writeCue(t, `configVersion: "1"
root: "/srv/data"
destination: "backup:/vault"
rules: inline: "size < 1000000"
workers: 8
errors: mode: "keep-going"
discovery: {
	noGitignore: true
	followSymlinks: true
}
output: {
	out: "report.json"
	pretty: true
}
rsync: {
	program: "/usr/local/bin/rsync"
	extraArgs: ["--compress"]
	timeoutMs: 60000
	dryRun: true
}
`)
	c, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.ConfigVersion != "1" {
		t.Fatalf("configVersion = %q", c.ConfigVersion)
	}
	if !c.Root.HasPath || c.Root.Path != "/srv/data" {
		t.Fatalf("root = %+v", c.Root)
	}
	if !c.Destination.HasSpec || c.Destination.Spec != "backup:/vault" {
		t.Fatalf("destination = %+v", c.Destination)
	}
	if !c.Rules.HasInline || c.Rules.Inline != "size < 1000000" {
		t.Fatalf("rules = %+v", c.Rules)
	}
	if !c.Workers.HasCount || c.Workers.Count != 8 {
		t.Fatalf("workers = %+v", c.Workers)
	}
	if !c.Errors.HasMode || c.Errors.Mode != "keep-going" {
		t.Fatalf("errors = %+v", c.Errors)
	}
	if !c.Discovery.HasNoGitignore || !c.Discovery.NoGitignore {
		t.Fatalf("discovery = %+v", c.Discovery)
	}
	if !c.Discovery.HasFollowSymlinks || !c.Discovery.FollowSymlinks {
		t.Fatalf("discovery = %+v", c.Discovery)
	}
	if !c.Output.HasOut || c.Output.Out != "report.json" || !c.Output.HasPretty || !c.Output.Pretty {
		t.Fatalf("output = %+v", c.Output)
	}
	if !c.Rsync.HasProgram || c.Rsync.Program != "/usr/local/bin/rsync" {
		t.Fatalf("rsync = %+v", c.Rsync)
	}
	if !c.Rsync.HasExtraArgs || len(c.Rsync.ExtraArgs) != 1 || c.Rsync.ExtraArgs[0] != "--compress" {
		t.Fatalf("rsync args = %+v", c.Rsync)
	}
	if !c.Rsync.HasTimeout || c.Rsync.TimeoutMs != 60000 {
		t.Fatalf("rsync timeout = %+v", c.Rsync)
	}
	if !c.Rsync.HasDryRun || !c.Rsync.DryRun {
		t.Fatalf("rsync dryRun = %+v", c.Rsync)
	}
}

func TestParseMinimalDefaults(t *testing.T) {
	c, err := Parse(writeCue(t, `configVersion: "1"`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Root.HasPath || c.Destination.HasSpec || c.Rules.HasInline || c.Workers.HasCount {
		t.Fatalf("presence flags should be unset: %+v", c)
	}
}

func TestParseRejectsBadErrorMode(t *testing.T) {
	_, err := Parse(writeCue(t, `configVersion: "1"
errors: mode: "whatever"
`))
	if err == nil {
		t.Fatal("expected error for invalid errors.mode")
	}
}

func TestParseRejectsRuleAndSelectionFile(t *testing.T) {
	_, err := Parse(writeCue(t, `configVersion: "1"
rules: inline: "true"
selectionFile: "sel.qap.yaml"
`))
	if err == nil {
		t.Fatal("rules.inline and selectionFile together should be rejected")
	}
}

func TestParseInvalidCue(t *testing.T) {
	if _, err := Parse(writeCue(t, `configVersion: "1`)); err == nil {
		t.Fatal("expected compile error")
	}
}
