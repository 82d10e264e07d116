// Package execution applies fix plans. It bounds concurrency by processing
// plans in chunks, serializes all plans touching one file under a per-file
// lock, and isolates each plan's failure from its siblings.
package execution

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/lexcodex/remedy/framework"
)

// Executor routes plans to specialists under per-file mutual exclusion.
type Executor struct {
	agentCtx    *framework.AgentContext
	specialists []framework.SubAgent
	chunkSize   int
	logger      *log.Logger

	// lockMu guards creation of per-file locks only, never the critical
	// sections themselves.
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewExecutor builds an executor over the given specialist set.
func NewExecutor(agentCtx *framework.AgentContext, specialists []framework.SubAgent, chunkSize int) *Executor {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	return &Executor{
		agentCtx:    agentCtx,
		specialists: specialists,
		chunkSize:   chunkSize,
		logger:      log.Default(),
		locks:       make(map[string]*sync.Mutex),
	}
}

// SetLogger overrides the default logger.
func (e *Executor) SetLogger(logger *log.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// ExecuteAll applies every plan and returns exactly one result per plan, in
// plan order. Plans for distinct files in the same chunk run in parallel;
// plans for the same file run as one serialized critical section.
func (e *Executor) ExecuteAll(ctx context.Context, plans []*framework.FixPlan) []*framework.FixResult {
	results := make([]*framework.FixResult, len(plans))

	for start := 0; start < len(plans); start += e.chunkSize {
		end := start + e.chunkSize
		if end > len(plans) {
			end = len(plans)
		}

		byFile := map[string][]int{}
		var fileOrder []string
		for i := start; i < end; i++ {
			path := plans[i].FilePath
			if _, seen := byFile[path]; !seen {
				fileOrder = append(fileOrder, path)
			}
			byFile[path] = append(byFile[path], i)
		}

		var wg sync.WaitGroup
		for _, path := range fileOrder {
			path := path
			indices := byFile[path]
			wg.Add(1)
			go func() {
				defer wg.Done()
				lock := e.fileLock(path)
				lock.Lock()
				defer lock.Unlock()
				for _, idx := range indices {
					results[idx] = e.executePlan(ctx, plans[idx])
				}
			}()
		}
		wg.Wait()
	}
	return results
}

// executePlan routes one plan to its specialist, downgrading panics and
// errors to failure results so a bad plan never aborts its siblings.
func (e *Executor) executePlan(ctx context.Context, plan *framework.FixPlan) (result *framework.FixResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("execution: panic on plan for %s (%s): %v", plan.FilePath, plan.IssueType, r)
			result = framework.FixFailure(fmt.Sprintf("plan execution panic for %s: %v", plan.FilePath, r))
		}
	}()

	specialist := e.specialistFor(plan.IssueType)
	if specialist == nil {
		return framework.FixFailure(fmt.Sprintf(
			"no specialist registered for issue type %q; plan for %s not executed", plan.IssueType, plan.FilePath))
	}

	e.agentCtx.Emit(framework.Event{
		Type: framework.EventExecutionStart, File: plan.FilePath, Stage: "execution",
		Metadata: map[string]any{"issue_type": plan.IssueType, "specialist": specialist.Name()},
	})

	var res *framework.FixResult
	var err error
	if pe, ok := specialist.(framework.PlanExecutor); ok {
		res, err = pe.ExecuteFixPlan(ctx, plan)
	} else {
		res, err = specialist.AnalyzeAndFix(ctx, e.syntheticIssue(plan))
	}
	if err != nil {
		e.logger.Printf("execution: specialist %s failed on plan for %s: %v", specialist.Name(), plan.FilePath, err)
		return framework.FixFailure(fmt.Sprintf("specialist %s failed executing plan for %s: %v",
			specialist.Name(), plan.FilePath, err))
	}
	if res == nil {
		return framework.FixFailure(fmt.Sprintf("specialist %s returned no result for %s", specialist.Name(), plan.FilePath))
	}
	e.agentCtx.Emit(framework.Event{
		Type: framework.EventExecutionDone, File: plan.FilePath, Stage: "execution",
		Metadata: map[string]any{"success": res.Success},
	})
	return res
}

// syntheticIssue converts a plan into the generic fix entry point's shape
// for specialists without plan execution support.
func (e *Executor) syntheticIssue(plan *framework.FixPlan) framework.Issue {
	issue := framework.NewIssue(framework.IssueType(plan.IssueType), framework.PriorityMedium, plan.Rationale)
	issue.FilePath = plan.FilePath
	if len(plan.Changes) > 0 {
		issue.LineNumber = plan.Changes[0].StartLine
	}
	return issue
}

// specialistFor resolves the specialist for an issue type; lookup is
// case-insensitive, first registered wins.
func (e *Executor) specialistFor(issueType string) framework.SubAgent {
	for _, s := range e.specialists {
		if framework.Supports(s, framework.IssueType(issueType)) {
			return s
		}
	}
	return nil
}

// fileLock returns the mutex dedicated to path, creating it race-free on
// first access.
func (e *Executor) fileLock(path string) *sync.Mutex {
	e.lockMu.Lock()
	defer e.lockMu.Unlock()
	lock, ok := e.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[path] = lock
	}
	return lock
}
