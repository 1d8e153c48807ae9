package version

import (
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = old
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	if runErr != nil {
		t.Fatalf("command failed: %v", runErr)
	}
	return string(b)
}

func TestVersionDefaultLine(t *testing.T) {
	out := captureStdout(t, func() error {
		return VersionCmd.RunE(VersionCmd, nil)
	})
	if out != "qap dev\n" {
		t.Fatalf("output = %q, want %q", out, "qap dev\n")
	}
}

func TestVersionJSON(t *testing.T) {
	flagJSON = true
	defer func() { flagJSON = false }()
	out := captureStdout(t, func() error {
		return VersionCmd.RunE(VersionCmd, nil)
	})
	if !strings.Contains(out, `"version"`) || !strings.Contains(out, `"go_os"`) {
		t.Fatalf("json output missing fields: %q", out)
	}
}
