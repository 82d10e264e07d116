package framework

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// CommandRequest captures process execution metadata for a behavioral check.
type CommandRequest struct {
	Workdir string
	Args    []string
	Env     []string
	Input   string
	Timeout time.Duration
}

// CommandRunner describes a primitive capable of executing commands.
// Validation's behavioral stage runs test files through it; tests swap in
// fakes to simulate slow or failing suites.
type CommandRunner interface {
	Run(ctx context.Context, req CommandRequest) (stdout string, stderr string, err error)
}

// ErrCommandTimeout reports that a command was killed at its deadline.
var ErrCommandTimeout = errors.New("command timed out")

// LocalCommandRunner executes commands directly on the host.
type LocalCommandRunner struct {
	// BaseEnv is prepended to every request's environment. Empty means
	// inherit the process environment.
	BaseEnv []string
}

// Run executes the request, enforcing its timeout as a hard deadline.
func (r *LocalCommandRunner) Run(ctx context.Context, req CommandRequest) (string, string, error) {
	if len(req.Args) == 0 {
		return "", "", errors.New("command arguments required")
	}
	execCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(execCtx, req.Args[0], req.Args[1:]...)
	cmd.Dir = req.Workdir
	if len(req.Env) > 0 || len(r.BaseEnv) > 0 {
		cmd.Env = append(append([]string{}, r.BaseEnv...), req.Env...)
	}
	if req.Input != "" {
		cmd.Stdin = strings.NewReader(req.Input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if execCtx.Err() == context.DeadlineExceeded {
		err = ErrCommandTimeout
	}
	return stdout.String(), stderr.String(), err
}
