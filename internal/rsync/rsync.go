// Package rsync drives the external rsync process that performs the actual
// transfer. The selection is handed over as a merged filter file so rsync
// copies exactly the chosen entries.
package rsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const (
	defaultProgram         = "rsync"
	defaultTimeoutMs       = 3600000
	defaultTermGraceMs     = 2000
	defaultCaptureMaxBytes = 1 << 20
)

// Options describe one rsync invocation.
type Options struct {
	Program         string
	Source          string
	Destination     string
	FilterFile      string
	ExtraArgs       []string
	DryRun          bool
	TimeoutMs       int
	TermGraceMs     int
	CaptureMaxBytes int
}

// Result captures the outcome of a run. ExitCode is -1 when the program
// could not be started and -2 on timeout.
type Result struct {
	ExitCode        int
	Stdout          string
	Stderr          string
	StdoutTruncated bool
	StderrTruncated bool
	TimedOut        bool
	ErrorMsg        string
}

// Ok reports whether the transfer completed cleanly.
func (r Result) Ok() bool {
	return r.ExitCode == 0 && !r.TimedOut && r.ErrorMsg == ""
}

func (o Options) withDefaults() Options {
	if o.Program == "" {
		o.Program = defaultProgram
	}
	if o.TimeoutMs <= 0 {
		o.TimeoutMs = defaultTimeoutMs
	}
	if o.TermGraceMs <= 0 {
		o.TermGraceMs = defaultTermGraceMs
	}
	if o.CaptureMaxBytes <= 0 {
		o.CaptureMaxBytes = defaultCaptureMaxBytes
	}
	return o
}

// Args renders the rsync argument list for the options.
func (o Options) Args() []string {
	args := []string{"-a"}
	if o.DryRun {
		args = append(args, "-n", "-v")
	}
	if o.FilterFile != "" {
		args = append(args, "--filter=merge "+o.FilterFile)
	}
	args = append(args, o.ExtraArgs...)
	args = append(args, ensureTrailingSlash(o.Source), o.Destination)
	return args
}

// ensureTrailingSlash makes rsync copy the contents of the source directory
// rather than the directory itself.
func ensureTrailingSlash(p string) string {
	if p == "" || p[len(p)-1] == '/' {
		return p
	}
	return p + "/"
}

// Run executes rsync with timeout and termination escalation. A non-zero
// rsync exit is reported in the result, not as an error; errors are reserved
// for invalid options.
func Run(ctx context.Context, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if opts.Source == "" {
		return Result{}, errors.New("rsync: missing source")
	}
	if opts.Destination == "" {
		return Result{}, errors.New("rsync: missing destination")
	}

	cmd := exec.Command(opts.Program, opts.Args()...)
	cmd.Env = os.Environ()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	outBuf := &limitedBuffer{max: opts.CaptureMaxBytes}
	errBuf := &limitedBuffer{max: opts.CaptureMaxBytes}
	cmd.Stdout = outBuf
	cmd.Stderr = errBuf

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return Result{ExitCode: -1, ErrorMsg: fmt.Sprintf("program %s not found", opts.Program)}, nil
		}
		return Result{ExitCode: -1, ErrorMsg: fmt.Sprintf("program %s start failed", opts.Program)}, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(time.Duration(opts.TimeoutMs) * time.Millisecond)
	defer timer.Stop()

	var runErr error
	timedOut := false
	select {
	case runErr = <-done:
	case <-ctx.Done():
		timedOut = true
		terminate(cmd, opts.TermGraceMs, done, &runErr)
	case <-timer.C:
		timedOut = true
		terminate(cmd, opts.TermGraceMs, done, &runErr)
	}

	res := Result{
		Stdout:          outBuf.String(),
		Stderr:          errBuf.String(),
		StdoutTruncated: outBuf.truncated,
		StderrTruncated: errBuf.truncated,
		TimedOut:        timedOut,
	}
	if timedOut {
		res.ExitCode = -2
		return res, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		res.ErrorMsg = fmt.Sprintf("program %s execution failed", opts.Program)
		return res, nil
	}
	return res, nil
}

// terminate sends SIGTERM to the process group, waits out the grace period,
// then escalates to SIGKILL.
func terminate(cmd *exec.Cmd, graceMs int, done <-chan error, runErr *error) {
	signalProcess(cmd, syscall.SIGTERM)
	grace := time.NewTimer(time.Duration(graceMs) * time.Millisecond)
	select {
	case *runErr = <-done:
		grace.Stop()
	case <-grace.C:
		signalProcess(cmd, syscall.SIGKILL)
		*runErr = <-done
	}
}

func signalProcess(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid > 0 {
		if err := syscall.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = cmd.Process.Signal(sig)
}
