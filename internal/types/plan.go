package types

// PlanDocument is the structured reply the planning agent expects from the
// language model. The model is instructed to answer with exactly this shape;
// anything that cannot be coerced into it fails the task.
type PlanDocument struct {
	Plan Plan `json:"plan"`
}

type Plan struct {
	Overview          string     `json:"overview"`
	Steps             []PlanStep `json:"steps"`
	EstimatedDuration string     `json:"estimated_duration"`
	EstimatedCost     string     `json:"estimated_cost"`
	NeedsExecution    bool       `json:"needs_execution"`
	ExecutionTasks    []string   `json:"execution_tasks,omitempty"`
}

type PlanStep struct {
	Step      string   `json:"step"`
	Timeline  string   `json:"timeline"`
	Resources []string `json:"resources"`
	Notes     string   `json:"notes"`
}

// ExecutionRequest is the payload the planning agent forwards to the
// execution agent when a plan needs follow-on execution.
type ExecutionRequest struct {
	Plan  Plan     `json:"plan"`
	Tasks []string `json:"tasks"`
}
