package bookertests

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/restfulbooker/booker-contract-tests/framework"
	"github.com/restfulbooker/booker-contract-tests/scenario"
)

// SuiteParams is everything RunTestSuite needs.
type SuiteParams struct {
	Runner  *scenario.Runner
	Entries []Entry
	// Parallel is the maximum number of scenarios executing at once. Values below 1 mean 1.
	Parallel   int
	Filter     framework.Filter
	TestLogger framework.TestLogger
}

// ID returns the test identifier of an entry.
func (e Entry) ID() framework.TestID {
	return framework.TestID{Path: []string{e.Group, e.Scenario.Name}}
}

type execution struct {
	result scenario.Result
	output framework.CapturedOutput
}

// RunTestSuite executes every entry that the filter selects, then reports each one as a test in
// table order. Scenarios execute concurrently up to the Parallel limit, but reporting is
// sequential so that console output is not interleaved.
func RunTestSuite(ctx context.Context, params SuiteParams) framework.Results {
	executions := execute(ctx, params)

	// Groups are always entered; individual scenarios were already filtered in execute.
	groupFilter := func(id framework.TestID) bool {
		return len(id.Path) < 2 || params.Filter == nil || params.Filter(id)
	}

	return framework.Run(groupFilter, params.TestLogger, func(c *framework.Context) {
		for _, group := range groupsInOrder(params.Entries) {
			if !anySelected(group, params.Entries, executions) {
				continue
			}
			c.Run(group, func(c *framework.Context) {
				for i, e := range params.Entries {
					if e.Group != group {
						continue
					}
					ex, ok := executions[i]
					if !ok {
						c.Run(e.Scenario.Name, func(c *framework.Context) {})
						continue
					}
					c.Run(e.Scenario.Name, func(c *framework.Context) {
						report(c, ex)
					})
				}
			})
		}
	})
}

func execute(ctx context.Context, params SuiteParams) map[int]*execution {
	executions := make(map[int]*execution)
	for i, e := range params.Entries {
		if params.Filter == nil || params.Filter(e.ID()) {
			executions[i] = &execution{}
		}
	}

	limit := params.Parallel
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, e := range params.Entries {
		ex, ok := executions[i]
		if !ok {
			continue
		}
		s := e.Scenario
		g.Go(func() error {
			var logger framework.CapturingLogger
			ex.result = params.Runner.Run(ctx, s, &logger)
			ex.output = logger.Output()
			return nil
		})
	}
	_ = g.Wait()
	return executions
}

func report(c *framework.Context, ex *execution) {
	c.AttachDebugOutput(ex.output)
	for _, step := range ex.result.Steps {
		switch {
		case step.Skipped:
			c.Debug("step %q skipped", step.Name)
		case step.Passed():
			c.Debug("step %q passed with status %d in %s", step.Name, step.Status, step.Duration)
		}
	}
	for _, f := range ex.result.Failures() {
		c.Errorf("%s", f)
	}
}

func groupsInOrder(entries []Entry) []string {
	var ret []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if !seen[e.Group] {
			seen[e.Group] = true
			ret = append(ret, e.Group)
		}
	}
	return ret
}

func anySelected(group string, entries []Entry, executions map[int]*execution) bool {
	for i, e := range entries {
		if e.Group == group && executions[i] != nil {
			return true
		}
	}
	return false
}
