// Package selfcheck implements the embedded self-test suite behind
// `qap test`. Each check exercises one slice of the program against fixtures
// built fresh per invocation, so repeated runs in the same environment give
// identical outcomes.
package selfcheck

import (
	"context"
	"fmt"
	"io"
)

// Check is one named self-check.
type Check struct {
	Name string
	Run  func(ctx context.Context, d *Diag) error
}

// Diag collects verbose diagnostic lines emitted while a check runs. The
// lines are only printed in verbose mode and never affect the outcome.
type Diag struct {
	lines []string
}

// Logf records one diagnostic line.
func (d *Diag) Logf(format string, args ...any) {
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

// Result is the outcome of one check.
type Result struct {
	Name   string
	Err    error
	Detail []string
}

// RunAll executes the full suite in order.
func RunAll(ctx context.Context) []Result {
	return RunList(ctx, Checks())
}

// RunList executes the given checks in order. A panicking check is reported
// as failed rather than taking the process down.
func RunList(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		results = append(results, runOne(ctx, c))
	}
	return results
}

func runOne(ctx context.Context, c Check) (res Result) {
	d := &Diag{}
	res.Name = c.Name
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic: %v", r)
		}
		res.Detail = d.lines
	}()
	res.Err = c.Run(ctx, d)
	return
}

// Report prints one line per check plus a summary and returns the number of
// failures. Verbose mode adds the diagnostic detail under each check.
func Report(w io.Writer, results []Result, verbose bool) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", r.Name, r.Err)
		} else {
			fmt.Fprintf(w, "ok   %s\n", r.Name)
		}
		if verbose {
			for _, line := range r.Detail {
				fmt.Fprintf(w, "     %s\n", line)
			}
		}
	}
	if failed == 0 {
		fmt.Fprintf(w, "%d checks passed\n", len(results))
	} else {
		fmt.Fprintf(w, "%d checks, %d failed\n", len(results), failed)
	}
	return failed
}

// FailError signals self-test failure to main with a dedicated exit code.
type FailError struct {
	Count int
}

func (e FailError) Error() string {
	return fmt.Sprintf("self-test: %d check(s) failed", e.Count)
}

// ExitCode implements the exit protocol used by the main package.
func (e FailError) ExitCode() int { return 1 }
