package selfcheck

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunAllPasses(t *testing.T) {
	results := RunAll(context.Background())
	if len(results) == 0 {
		t.Fatal("suite is empty")
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: %v", r.Name, r.Err)
		}
	}
}

func TestRunAllIsRepeatable(t *testing.T) {
	ctx := context.Background()
	first := RunAll(ctx)
	second := RunAll(ctx)
	if len(first) != len(second) {
		t.Fatalf("suite size changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("check order changed at %d: %s vs %s", i, first[i].Name, second[i].Name)
		}
		if (first[i].Err == nil) != (second[i].Err == nil) {
			t.Fatalf("%s: outcome changed between runs", first[i].Name)
		}
	}
}

func TestRunListReportsFailure(t *testing.T) {
	checks := []Check{
		{Name: "passing", Run: func(ctx context.Context, d *Diag) error { return nil }},
		{Name: "failing", Run: func(ctx context.Context, d *Diag) error { return errors.New("broke") }},
	}
	results := RunList(context.Background(), checks)
	if results[0].Err != nil {
		t.Fatalf("passing check failed: %v", results[0].Err)
	}
	if results[1].Err == nil || results[1].Name != "failing" {
		t.Fatalf("failing check not reported: %+v", results[1])
	}
}

func TestRunListRecoversPanic(t *testing.T) {
	checks := []Check{
		{Name: "panicking", Run: func(ctx context.Context, d *Diag) error { panic("kaboom") }},
	}
	results := RunList(context.Background(), checks)
	if results[0].Err == nil || !strings.Contains(results[0].Err.Error(), "kaboom") {
		t.Fatalf("panic not converted to failure: %+v", results[0])
	}
}

func TestReportAllPassing(t *testing.T) {
	results := []Result{
		{Name: "alpha"},
		{Name: "beta", Detail: []string{"counted 5 files"}},
	}
	var b strings.Builder
	failed := Report(&b, results, false)
	if failed != 0 {
		t.Fatalf("failed = %d, want 0", failed)
	}
	out := b.String()
	if !strings.Contains(out, "ok   alpha\n") || !strings.Contains(out, "ok   beta\n") {
		t.Fatalf("per-check lines missing:\n%s", out)
	}
	if !strings.Contains(out, "2 checks passed\n") {
		t.Fatalf("summary missing:\n%s", out)
	}
	if strings.Contains(out, "counted 5 files") {
		t.Fatalf("detail printed without verbose:\n%s", out)
	}
}

func TestReportVerboseIsAdditive(t *testing.T) {
	results := []Result{
		{Name: "beta", Detail: []string{"counted 5 files"}},
	}
	var terse, verbose strings.Builder
	Report(&terse, results, false)
	Report(&verbose, results, true)
	if !strings.HasPrefix(verbose.String(), "ok   beta\n") {
		t.Fatalf("verbose changed the check line:\n%s", verbose.String())
	}
	if !strings.Contains(verbose.String(), "     counted 5 files\n") {
		t.Fatalf("verbose detail missing:\n%s", verbose.String())
	}
	if terse.Len() >= verbose.Len() {
		t.Fatal("verbose output should be a superset")
	}
}

func TestReportFailureSummary(t *testing.T) {
	results := []Result{
		{Name: "alpha"},
		{Name: "beta", Err: errors.New("broke")},
	}
	var b strings.Builder
	failed := Report(&b, results, false)
	if failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	out := b.String()
	if !strings.Contains(out, "FAIL beta: broke\n") {
		t.Fatalf("failure line missing:\n%s", out)
	}
	if !strings.Contains(out, "2 checks, 1 failed\n") {
		t.Fatalf("summary missing:\n%s", out)
	}
}

func TestFailErrorExitCode(t *testing.T) {
	err := FailError{Count: 3}
	if err.ExitCode() != 1 {
		t.Fatalf("ExitCode = %d, want 1", err.ExitCode())
	}
	if !strings.Contains(err.Error(), "3") {
		t.Fatalf("Error = %q", err.Error())
	}
}
