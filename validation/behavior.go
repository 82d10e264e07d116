package validation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexcodex/remedy/framework"
)

// dangerousConstructs are substrings whose presence in fixed code is
// rejected outright. A repair tool has no business introducing any of
// them.
var dangerousConstructs = []string{
	"eval(",
	"exec(",
	"__import__(",
	"os.system(",
	"shell=True",
	"rm -rf",
	"DROP TABLE",
	"DELETE FROM",
}

// checkBehavior scans the content for dangerous constructs and, when
// runTests is set, locates and executes the file's test file through the
// configured runner.
func (v *Validator) checkBehavior(ctx context.Context, content, filePath string, runTests bool) framework.ValidationResult {
	var errs []string
	for i, line := range strings.Split(content, "\n") {
		for _, construct := range dangerousConstructs {
			if strings.Contains(line, construct) {
				errs = append(errs, fmt.Sprintf("dangerous construct %q at line %d", construct, i+1))
			}
		}
	}
	if len(errs) > 0 {
		return framework.Invalid(errs...)
	}
	if !runTests || len(v.testCommand) == 0 {
		return framework.Validated()
	}

	testPath, err := v.DiscoverTestFile(filePath)
	if err != nil {
		return framework.Invalid(err.Error())
	}
	return v.runTestFile(ctx, testPath)
}

// DiscoverTestFile locates the test file paired with filePath. Candidates
// are checked in order: a sibling test_<stem> or <stem>_test file, then the
// same names under tests/ and tests/integration/ relative to the project
// root. Absence is a validation failure, not a pass.
func (v *Validator) DiscoverTestFile(filePath string) (string, error) {
	dir := filepath.Dir(filePath)
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	names := []string{
		"test_" + stem + ext,
		stem + "_test" + ext,
	}
	roots := []string{dir}
	if v.agentCtx != nil && v.agentCtx.ProjectPath != "" {
		roots = append(roots,
			filepath.Join(v.agentCtx.ProjectPath, "tests"),
			filepath.Join(v.agentCtx.ProjectPath, "tests", "integration"),
		)
	} else {
		roots = append(roots,
			filepath.Join(dir, "tests"),
			filepath.Join(dir, "tests", "integration"),
		)
	}

	for _, root := range roots {
		for _, name := range names {
			candidate := filepath.Join(root, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("no test file found for %s", filePath)
}

func (v *Validator) runTestFile(ctx context.Context, testPath string) framework.ValidationResult {
	args := append(append([]string{}, v.testCommand...), testPath)
	req := framework.CommandRequest{
		Workdir: filepath.Dir(testPath),
		Args:    args,
		Timeout: v.timeout,
	}
	_, stderr, err := v.runner.Run(ctx, req)
	if err != nil {
		if errors.Is(err, framework.ErrCommandTimeout) {
			return framework.Invalid(fmt.Sprintf("behavioral tests timed out after %s: %s", v.timeout, testPath))
		}
		msg := fmt.Sprintf("behavioral tests failed: %s", testPath)
		if detail := strings.TrimSpace(stderr); detail != "" {
			msg += ": " + firstLine(detail)
		}
		return framework.Invalid(msg)
	}
	return framework.Validated()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
