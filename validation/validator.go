// Package validation decides whether a candidate fix is sound. Source
// content gets three independent checks (syntax, logic heuristics, and a
// behavioral scan optionally escalated to test execution) with syntax as a
// hard gate and an OR over the other two. Non-source content takes a
// lightweight bypass.
package validation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lexcodex/remedy/framework"
	"github.com/lexcodex/remedy/framework/syntax"
)

// Options tunes a Validator.
type Options struct {
	// TestCommand is the interpreter prefix used to execute a discovered
	// test file (for example ["python3"]). Empty disables execution and
	// behavioral checks stay static.
	TestCommand []string
	// TestTimeout is the hard wall-clock limit on test execution.
	TestTimeout time.Duration
	// MaxAttempts bounds ValidateWithRetry.
	MaxAttempts int
}

// Validator runs the acceptance decision over candidate fixes.
type Validator struct {
	agentCtx    *framework.AgentContext
	runner      framework.CommandRunner
	testCommand []string
	timeout     time.Duration
	maxAttempts int
}

// NewValidator builds a validator. A nil runner gets the local subprocess
// runner.
func NewValidator(agentCtx *framework.AgentContext, runner framework.CommandRunner, opts Options) *Validator {
	if runner == nil {
		runner = &framework.LocalCommandRunner{}
	}
	if opts.TestTimeout <= 0 {
		opts.TestTimeout = 60 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	return &Validator{
		agentCtx:    agentCtx,
		runner:      runner,
		testCommand: opts.TestCommand,
		timeout:     opts.TestTimeout,
		maxAttempts: opts.MaxAttempts,
	}
}

// ValidateFix runs the full acceptance decision over candidate content.
// runTests escalates the behavioral check from a static scan to executing
// the file's discovered test file.
func (v *Validator) ValidateFix(ctx context.Context, content, filePath string, runTests bool) framework.ValidationResult {
	if !syntax.IsSource(filePath) {
		if strings.TrimSpace(content) == "" {
			return framework.Invalid("non-source file is empty")
		}
		return framework.Validated()
	}

	var syntaxRes, logicRes, behaviorRes framework.ValidationResult
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := syntax.Check(content, filePath); err != nil {
			syntaxRes = framework.Invalid("syntax check failed: " + err.Error())
			return
		}
		syntaxRes = framework.Validated()
	}()
	go func() {
		defer wg.Done()
		logicRes = CheckLogic(content, filePath)
	}()
	go func() {
		defer wg.Done()
		behaviorRes = v.checkBehavior(ctx, content, filePath, runTests)
	}()
	wg.Wait()

	// Syntax failure dominates regardless of the other outcomes.
	if !syntaxRes.Valid {
		v.emit(framework.EventValidationRejected, filePath, syntaxRes.Errors)
		return syntaxRes
	}
	// Either secondary check alone can be a false negative; reject only
	// when both independently object.
	if logicRes.Valid || behaviorRes.Valid {
		v.emit(framework.EventValidationAccepted, filePath, nil)
		return framework.Validated()
	}
	rejected := logicRes.Merge(behaviorRes)
	v.emit(framework.EventValidationRejected, filePath, rejected.Errors)
	return rejected
}

// ValidateWithRetry re-runs validation up to the configured attempt bound,
// escalating to behavioral test execution only on the final attempt. It
// returns the outcome and the number of attempts actually used.
func (v *Validator) ValidateWithRetry(ctx context.Context, content, filePath string) (framework.ValidationResult, int) {
	var result framework.ValidationResult
	for attempt := 1; attempt <= v.maxAttempts; attempt++ {
		final := attempt == v.maxAttempts
		result = v.ValidateFix(ctx, content, filePath, final)
		if result.Valid {
			return result, attempt
		}
	}
	return result, v.maxAttempts
}

func (v *Validator) emit(eventType framework.EventType, file string, errs []string) {
	event := framework.Event{Type: eventType, File: file, Stage: "validation"}
	if len(errs) > 0 {
		event.Message = strings.Join(errs, "; ")
	}
	v.agentCtx.Emit(event)
}
