package workflow

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/harshapalnati/agno/core"
)

// runDAG executes the graph in topological waves. Nodes whose dependencies
// are all satisfied run concurrently, capped at MaxWorkers. A node's input is
// the run input for roots, otherwise its predecessors' outputs joined in edge
// declaration order.
//
// A failed node fails only its transitive dependents, which are recorded as
// skipped and never invoked; independent branches run to completion. The run
// output is the completed sink outputs joined in node declaration order.
// Each node runs under a session derived from the trace's run id and the
// node id, keeping concurrent nodes on a shared store in separate,
// strictly ordered transcripts that remain correlated to the run.
func (e *Engine) runDAG(ctx context.Context, input string, trace *core.ExecutionTrace) (*Result, error) {
	spec := e.team.Workflow().DAG

	declIdx := make(map[string]int, len(spec.Nodes))
	agents := make(map[string]string, len(spec.Nodes))
	for i, n := range spec.Nodes {
		declIdx[n.ID] = i
		agents[n.ID] = n.Agent
	}

	indegree := make(map[string]int, len(spec.Nodes))
	succ := make(map[string][]string)
	pred := make(map[string][]string)
	for _, edge := range spec.Edges {
		succ[edge.From] = append(succ[edge.From], edge.To)
		pred[edge.To] = append(pred[edge.To], edge.From)
		indegree[edge.To]++
	}

	status := make(map[string]core.StepStatus, len(spec.Nodes))
	outputs := make(map[string]string, len(spec.Nodes))

	var ready []string
	for _, n := range spec.Nodes {
		if indegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	for len(ready) > 0 {
		wave := ready
		ready = nil

		type waveResult struct {
			output string
			err    error
		}
		results := make([]waveResult, len(wave))
		ran := make([]bool, len(wave))

		p := pool.New().WithMaxGoroutines(e.maxWorkers)
		for i, id := range wave {
			blocked := ""
			for _, dep := range pred[id] {
				if status[dep] != core.StepCompleted {
					blocked = dep
					break
				}
			}
			if blocked != "" {
				status[id] = core.StepSkipped
				trace.Append(core.StepRecord{
					Node: id, Agent: agents[id],
					Status:  core.StepSkipped,
					Error:   "dependency " + blocked + " did not complete",
					Started: time.Now().UTC(),
				})
				e.logger.Warn("workflow.dag.skipped", "team", e.team.Name(), "node", id, "dependency", blocked)
				continue
			}

			nodeInput := input
			if deps := pred[id]; len(deps) > 0 {
				parts := make([]string, 0, len(deps))
				for _, dep := range deps {
					parts = append(parts, outputs[dep])
				}
				nodeInput = strings.Join(parts, "\n\n")
			}

			ran[i] = true
			i, id, nodeInput := i, id, nodeInput
			p.Go(func() {
				started := time.Now().UTC()
				resp, err := e.runners[agents[id]].RunOnce(ctx, trace.RunID+":"+id, nodeInput)
				if err != nil {
					results[i] = waveResult{err: err}
					trace.Append(core.StepRecord{
						Node: id, Agent: agents[id], Input: nodeInput,
						Status: core.StepFailed, Error: err.Error(),
						Started: started, Duration: time.Since(started),
					})
					return
				}
				results[i] = waveResult{output: resp.Text}
				trace.Append(core.StepRecord{
					Node: id, Agent: agents[id], Input: nodeInput, Output: resp.Text,
					Status: core.StepCompleted, Started: started, Duration: time.Since(started),
				})
			})
		}
		p.Wait()

		for i, id := range wave {
			if !ran[i] {
				// Already marked skipped.
			} else if results[i].err != nil {
				status[id] = core.StepFailed
			} else {
				status[id] = core.StepCompleted
				outputs[id] = results[i].output
			}
			for _, next := range succ[id] {
				indegree[next]--
				if indegree[next] == 0 {
					ready = append(ready, next)
				}
			}
		}
		sort.Slice(ready, func(a, b int) bool { return declIdx[ready[a]] < declIdx[ready[b]] })
	}

	var failed []string
	for _, n := range spec.Nodes {
		if status[n.ID] == core.StepFailed {
			failed = append(failed, n.ID)
		}
	}

	var sinks []string
	for _, n := range spec.Nodes {
		if len(succ[n.ID]) == 0 && status[n.ID] == core.StepCompleted {
			sinks = append(sinks, outputs[n.ID])
		}
	}
	res := &Result{Output: strings.Join(sinks, "\n\n"), Outputs: outputs, Trace: trace}

	if len(failed) > 0 {
		return res, core.NewWorkflowError(core.CodeNodeFailure, failed[0],
			"%d of %d nodes failed", len(failed), len(spec.Nodes))
	}
	return res, nil
}
