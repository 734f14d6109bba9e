// Package pipelineimage defines Constellation's two serializable
// snapshots (spec.md §3): a compiled pipeline image (for compilation-cache
// rehydration) and a suspended execution (for resuming a run that was
// missing required inputs). Both are (de)serialized with the teacher's
// go.yaml.in/yaml/v3 stack, grounded on dag/loader.go's YAML-driven graph
// loading.
package pipelineimage

import (
	"time"

	"github.com/constellation-run/constellation/compile"
	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/optionspec"
	"github.com/constellation-run/constellation/types"
)

// Image is a compiled pipeline snapshot: enough to rehydrate a runnable
// program when only inline transforms (not user lambdas, which aren't
// serializable) need reconstruction.
type Image struct {
	StructuralHash string        `yaml:"structural_hash"`
	SyntacticHash  string        `yaml:"syntactic_hash,omitempty"`
	DAG            *compile.DAG  `yaml:"dag"`
	CompiledAt     time.Time     `yaml:"compiled_at"`
}

// ModuleStatus tracks one module node's lifecycle within an execution.
type ModuleStatus string

const (
	StatusPending   ModuleStatus = "pending"
	StatusRunning   ModuleStatus = "running"
	StatusCompleted ModuleStatus = "completed"
	StatusFailed    ModuleStatus = "failed"
	StatusCancelled ModuleStatus = "cancelled"
	StatusSkipped   ModuleStatus = "skipped"
)

// SuspendedExecution is a self-contained record of a partially completed
// run (spec.md §3, §9): resuming starts a new run whose initial data
// table is pre-populated from ComputedValues and whose new inputs are
// merged with ProvidedInputs. A correct resume's structural hash equals
// the original's.
type SuspendedExecution struct {
	ExecutionID      string                  `yaml:"execution_id"`
	StructuralHash   string                  `yaml:"structural_hash"`
	ResumptionCount  int                     `yaml:"resumption_count"`
	DAG              *compile.DAG            `yaml:"dag"`
	Options          map[ir.ID]optionspec.Options `yaml:"options,omitempty"`
	ProvidedInputs   map[string]types.Value  `yaml:"provided_inputs"`
	ComputedValues   map[ir.ID]types.Value   `yaml:"computed_values"`
	ModuleStatuses   map[ir.ID]ModuleStatus  `yaml:"module_statuses"`
}

// Resume merges newInputs over the suspended execution's provided inputs
// and bumps ResumptionCount, returning the run-ready input map.
func (s *SuspendedExecution) Resume(newInputs map[string]types.Value) map[string]types.Value {
	s.ResumptionCount++
	merged := make(map[string]types.Value, len(s.ProvidedInputs)+len(newInputs))
	for k, v := range s.ProvidedInputs {
		merged[k] = v
	}
	for k, v := range newInputs {
		merged[k] = v
	}
	return merged
}
