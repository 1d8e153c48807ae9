package config

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
)

// LoadAndValidate loads a CUE file and validates the minimal required schema.
// Required fields:
//   - configVersion: string
func LoadAndValidate(path string) error {
	_, err := loadValidated(path)
	return err
}

func loadValidated(path string) (cue.Value, error) {
	v, err := compileCUE(path)
	if err != nil {
		return cue.Value{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return cue.Value{}, err
	}
	return v, nil
}

// Config holds the parsed backup configuration with presence flags, so
// commands can distinguish "unset" from zero values when merging with flags.
type Config struct {
	ConfigVersion string
	Root          Root
	Destination   Destination
	Selection     SelectionFile
	Rules         Rules
	Workers       Workers
	Errors        Errors
	Discovery     Discovery
	Output        Output
	Rsync         Rsync
}

// Root holds the optional scan root.
type Root struct {
	Path    string
	HasPath bool
}

// Destination holds the rsync destination (local path or remote spec).
type Destination struct {
	Spec    string
	HasSpec bool
}

// SelectionFile points at a saved selection.
type SelectionFile struct {
	Path    string
	HasPath bool
}

// Rules holds the optional inline Lua selection rule.
type Rules struct {
	Inline    string
	HasInline bool
}

// Workers holds the optional worker count.
type Workers struct {
	Count    int
	HasCount bool
}

// Errors holds the optional error mode (fail-fast or keep-going).
type Errors struct {
	Mode    string
	HasMode bool
}

// Discovery holds optional scan toggles.
type Discovery struct {
	NoGitignore       bool
	FollowSymlinks    bool
	HasNoGitignore    bool
	HasFollowSymlinks bool
}

// Output holds optional report output settings.
type Output struct {
	Out       string
	Pretty    bool
	Lines     bool
	HasOut    bool
	HasPretty bool
	HasLines  bool
}

// Rsync holds optional rsync invocation settings.
type Rsync struct {
	Program      string
	ExtraArgs    []string
	TimeoutMs    int
	DryRun       bool
	HasProgram   bool
	HasExtraArgs bool
	HasTimeout   bool
	HasDryRun    bool
}

// Parse validates and extracts the configuration from a CUE file.
func Parse(path string) (Config, error) {
	v, err := loadValidated(path)
	if err != nil {
		return Config{}, err
	}

	var c Config
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&c.ConfigVersion); err != nil {
		return Config{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}

	decodeString(v, "root", &c.Root.Path, &c.Root.HasPath)
	decodeString(v, "destination", &c.Destination.Spec, &c.Destination.HasSpec)
	decodeString(v, "selectionFile", &c.Selection.Path, &c.Selection.HasPath)

	if rv := v.LookupPath(cue.ParsePath("rules")); rv.Exists() {
		decodeString(rv, "inline", &c.Rules.Inline, &c.Rules.HasInline)
	}
	decodeInt(v, "workers", &c.Workers.Count, &c.Workers.HasCount)

	if ev := v.LookupPath(cue.ParsePath("errors")); ev.Exists() {
		decodeString(ev, "mode", &c.Errors.Mode, &c.Errors.HasMode)
	}
	if c.Errors.HasMode && c.Errors.Mode != "fail-fast" && c.Errors.Mode != "keep-going" {
		return Config{}, fmt.Errorf("invalid errors.mode: %s", c.Errors.Mode)
	}

	if dv := v.LookupPath(cue.ParsePath("discovery")); dv.Exists() {
		decodeBool(dv, "noGitignore", &c.Discovery.NoGitignore, &c.Discovery.HasNoGitignore)
		decodeBool(dv, "followSymlinks", &c.Discovery.FollowSymlinks, &c.Discovery.HasFollowSymlinks)
	}
	if ov := v.LookupPath(cue.ParsePath("output")); ov.Exists() {
		decodeString(ov, "out", &c.Output.Out, &c.Output.HasOut)
		decodeBool(ov, "pretty", &c.Output.Pretty, &c.Output.HasPretty)
		decodeBool(ov, "lines", &c.Output.Lines, &c.Output.HasLines)
	}
	if sv := v.LookupPath(cue.ParsePath("rsync")); sv.Exists() {
		decodeString(sv, "program", &c.Rsync.Program, &c.Rsync.HasProgram)
		decodeInt(sv, "timeoutMs", &c.Rsync.TimeoutMs, &c.Rsync.HasTimeout)
		decodeBool(sv, "dryRun", &c.Rsync.DryRun, &c.Rsync.HasDryRun)
		if av := sv.LookupPath(cue.ParsePath("extraArgs")); av.Exists() && av.Kind() == cue.ListKind {
			if err := av.Decode(&c.Rsync.ExtraArgs); err == nil && len(c.Rsync.ExtraArgs) > 0 {
				c.Rsync.HasExtraArgs = true
			}
		}
	}

	if c.Rules.HasInline && c.Selection.HasPath {
		return Config{}, errors.New("rules.inline and selectionFile are mutually exclusive")
	}
	return c, nil
}
