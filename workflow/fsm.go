package workflow

import (
	"context"
	"time"

	"github.com/harshapalnati/agno/core"
)

// runFSM walks the state machine from the start state. Each non-terminal
// state runs its agent on the current payload, the signal policy extracts a
// routing signal from the output, and the transition table picks the next
// state. Reaching a terminal state ends the run with the last output.
//
// A signal with no table entry is an UNKNOWN_SIGNAL failure; exceeding the
// step bound without reaching a terminal is NON_TERMINATING. Both carry the
// partial outputs and trace. Every state runs under the trace's run id as
// the session, so agents on a shared store see the whole run's transcript.
func (e *Engine) runFSM(ctx context.Context, input string, trace *core.ExecutionTrace) (*Result, error) {
	spec := e.team.Workflow().FSM

	states := make(map[string]string, len(spec.States)) // state -> agent
	for _, s := range spec.States {
		states[s.Name] = s.Agent
	}
	terminals := make(map[string]bool, len(spec.Terminals))
	for _, name := range spec.Terminals {
		terminals[name] = true
	}
	table := make(map[string]map[string]string) // state -> signal -> next
	for _, tr := range spec.Transitions {
		row := table[tr.From]
		if row == nil {
			row = make(map[string]string)
			table[tr.From] = row
		}
		row[tr.Signal] = tr.To
	}

	outputs := make(map[string]string)
	current := spec.Start
	payload := input

	for step := 0; ; step++ {
		// Terminal is checked after every transition, so a machine that
		// lands on a terminal with its last allowed step still succeeds.
		if terminals[current] {
			e.logger.Info("workflow.fsm.terminal", "team", e.team.Name(), "state", current, "steps", step)
			return &Result{Output: payload, Outputs: outputs, Trace: trace}, nil
		}
		if step == e.stepLimit {
			return &Result{Outputs: outputs, Trace: trace},
				core.NewWorkflowError(core.CodeNonTerminating, current,
					"no terminal state reached within %d steps", e.stepLimit)
		}

		agentName := states[current]
		started := time.Now().UTC()
		resp, err := e.runners[agentName].RunOnce(ctx, trace.RunID, payload)
		if err != nil {
			trace.Append(core.StepRecord{
				Node: current, Agent: agentName, Input: payload,
				Status: core.StepFailed, Error: err.Error(),
				Started: started, Duration: time.Since(started),
			})
			werr := core.NewWorkflowError(core.CodeNodeFailure, current, "state %q agent %q failed: %v", current, agentName, err)
			werr.Err = err
			return &Result{Outputs: outputs, Trace: trace}, werr
		}

		trace.Append(core.StepRecord{
			Node: current, Agent: agentName, Input: payload, Output: resp.Text,
			Status: core.StepCompleted, Started: started, Duration: time.Since(started),
		})
		outputs[current] = resp.Text
		payload = resp.Text

		signal := e.signal(resp.Text)
		next, ok := table[current][signal]
		if !ok {
			return &Result{Outputs: outputs, Trace: trace},
				core.NewWorkflowError(core.CodeUnknownSignal, current,
					"state %q has no transition for signal %q", current, signal)
		}
		e.logger.Debug("workflow.fsm.transition",
			"team", e.team.Name(), "from", current, "signal", signal, "to", next)
		current = next
	}
}
