package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/harshapalnati/agno/core"
)

// runChain pipes input through the chain members in order. Every step runs
// under the trace's run id as the session, so a team-shared store keys the
// whole run's transcripts together while distinct runs never leak into each
// other.
func (e *Engine) runChain(ctx context.Context, input string, trace *core.ExecutionTrace) (*Result, error) {
	chain := e.team.Workflow().Chain
	outputs := make(map[string]string, len(chain))
	current := input

	for i, name := range chain {
		node := fmt.Sprintf("%d:%s", i, name)
		started := time.Now().UTC()

		resp, err := e.runners[name].RunOnce(ctx, trace.RunID, current)
		if err != nil {
			trace.Append(core.StepRecord{
				Node: node, Agent: name, Input: current,
				Status: core.StepFailed, Error: err.Error(),
				Started: started, Duration: time.Since(started),
			})
			werr := core.NewWorkflowError(core.CodeNodeFailure, node, "chain step %d (%s) failed: %v", i, name, err)
			werr.Err = err
			return &Result{Outputs: outputs, Trace: trace}, werr
		}

		trace.Append(core.StepRecord{
			Node: node, Agent: name, Input: current, Output: resp.Text,
			Status: core.StepCompleted, Started: started, Duration: time.Since(started),
		})
		outputs[node] = resp.Text
		current = resp.Text
	}

	return &Result{Output: current, Outputs: outputs, Trace: trace}, nil
}
