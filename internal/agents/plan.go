package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"decisionflow/internal/llm"
	"decisionflow/internal/types"
	"decisionflow/internal/utils"

	"github.com/kaptinlin/jsonrepair"
)

const planSystemPrompt = `You are an AI assistant that creates detailed, actionable plans based on user requests.
Your task is to:
1. Analyze the complete context provided
2. Create a comprehensive, step-by-step plan
3. Include timelines, resources needed, and potential challenges
4. Determine if the plan needs execution assistance

Respond in JSON format:
{
    "plan": {
        "overview": "brief summary of the plan",
        "steps": [
            {
                "step": "step description",
                "timeline": "estimated time",
                "resources": ["required", "resources"],
                "notes": "additional information"
            }
        ],
        "estimated_duration": "total time estimate",
        "estimated_cost": "cost estimate if applicable",
        "needs_execution": boolean,
        "execution_tasks": ["list", "of", "tasks", "if", "needs_execution"]
    }
}`

// Forwarder sends text to an externally addressed agent and returns the
// extracted reply text. The A2A client satisfies this.
type Forwarder interface {
	SendText(ctx context.Context, url, text string) (string, error)
}

// PlanAgent turns a request into a structured plan. The model must answer
// with the JSON plan schema; replies that cannot be parsed fail the task.
// Plans flagged as needing execution are forwarded to the execution agent.
type PlanAgent struct {
	LLMAgent
	forwarder   Forwarder
	executorURL string
}

func NewPlanAgent(provider llm.Provider, forwarder Forwarder, executorURL string, logger *utils.Logger) *PlanAgent {
	return &PlanAgent{
		LLMAgent:    NewLLMAgent(provider, planSystemPrompt, logger),
		forwarder:   forwarder,
		executorURL: executorURL,
	}
}

func (a *PlanAgent) ID() string   { return "create-plan" }
func (a *PlanAgent) Name() string { return "Create Plan Agent" }

func (a *PlanAgent) Card(baseURL string) types.AgentCard {
	return types.AgentCard{
		ProtocolVersion: "1.0",
		Name:            a.Name(),
		Description:     "An intelligent planning agent that dynamically adapts to any scenario. Creates comprehensive, actionable plans by analyzing the specific context, requirements, and objectives of each unique situation.",
		URL:             baseURL + "/",
		Version:         "1.0.0",
		Provider:        types.Provider{Name: "Decision Flow Systems", URL: "https://github.com/decision-flow-agent"},
		Skills: []types.Skill{{
			ID:          "dynamic_planning",
			Name:        "Dynamic Planning",
			Description: "Creates detailed, actionable plans for any scenario by analyzing requirements, context, and objectives",
			Tags:        []string{"planning", "strategy", "organization", "analysis", "execution"},
			InputModes:  []string{"text", "text/plain"},
			OutputModes: []string{"text", "text/plain"},
		}},
		Capabilities: types.AgentCapabilities{
			Streaming:              true,
			PushNotifications:      false,
			StateTransitionHistory: true,
		},
	}
}

func (a *PlanAgent) Execute(ctx context.Context, ec types.ExecutionContext) (types.ExecutionResult, error) {
	userText := ec.UserMessage.UserText()
	if userText == "" {
		return types.ExecutionResult{}, errors.New("empty user message")
	}

	raw, degraded, err := a.complete(ctx, userText)
	if err != nil {
		return types.ExecutionResult{}, fmt.Errorf("plan generation failed: %w", err)
	}
	if degraded {
		return types.ExecutionResult{Reply: newReply(ec, raw, true)}, nil
	}

	doc, err := parsePlanDocument(raw)
	if err != nil {
		return types.ExecutionResult{}, fmt.Errorf("error creating plan: %w", err)
	}

	parts := []types.Part{{Kind: "text", Text: formatPlan(doc.Plan)}}
	if doc.Plan.NeedsExecution {
		parts = append(parts, types.Part{Kind: "text", Text: "This plan requires execution assistance. Forwarding to Task Executor..."})
		parts = append(parts, types.Part{Kind: "text", Text: a.forwardToExecutor(ctx, doc.Plan)})
	} else {
		parts = append(parts, types.Part{Kind: "text", Text: "Plan is ready for your review. No automated execution is needed for this plan."})
	}

	reply := newReply(ec, "", false)
	reply.Parts = parts

	artifact := types.Artifact{
		ArtifactID: utils.NewID("artifact"),
		Name:       "plan",
		Parts:      []types.Part{{Kind: "data", Data: doc.Plan}},
	}

	return types.ExecutionResult{Reply: reply, Artifacts: []types.Artifact{artifact}}, nil
}

// forwardToExecutor relays the plan to the execution agent and returns its
// extracted reply text. Forwarding failure does not fail the planning task;
// the plan itself was already produced.
func (a *PlanAgent) forwardToExecutor(ctx context.Context, plan types.Plan) string {
	if a.forwarder == nil {
		return "No execution agent is configured."
	}
	payload, err := json.Marshal(types.ExecutionRequest{Plan: plan, Tasks: plan.ExecutionTasks})
	if err != nil {
		a.logger.Errorf("failed to encode execution request: %v", err)
		return "No response received from the execution agent."
	}
	text, err := a.forwarder.SendText(ctx, a.executorURL, string(payload))
	if err != nil {
		a.logger.Errorf("execution agent call failed: %v", err)
		return "No response received from the execution agent."
	}
	return text
}

// parsePlanDocument decodes the model's JSON reply. Models wrap JSON in code
// fences or emit slightly broken JSON often enough that a repair pass is
// attempted before giving up.
func parsePlanDocument(raw string) (types.PlanDocument, error) {
	cleaned := stripCodeFence(raw)

	var doc types.PlanDocument
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return types.PlanDocument{}, fmt.Errorf("response is not valid JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
			return types.PlanDocument{}, fmt.Errorf("response did not match the plan schema: %w", err)
		}
	}
	if doc.Plan.Overview == "" && len(doc.Plan.Steps) == 0 {
		return types.PlanDocument{}, errors.New("response did not contain a plan")
	}
	return doc, nil
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func formatPlan(plan types.Plan) string {
	var b strings.Builder
	b.WriteString("Plan Overview\n")
	b.WriteString(plan.Overview)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Estimated Duration: %s\n", plan.EstimatedDuration)
	fmt.Fprintf(&b, "Estimated Cost: %s\n", plan.EstimatedCost)
	b.WriteString("\nStep-by-Step Plan:\n")
	for i, step := range plan.Steps {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, step.Step)
		fmt.Fprintf(&b, "   Timeline: %s\n", step.Timeline)
		fmt.Fprintf(&b, "   Resources: %s\n", strings.Join(step.Resources, ", "))
		fmt.Fprintf(&b, "   Note: %s\n", step.Notes)
	}
	return b.String()
}
