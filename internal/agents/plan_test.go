package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"decisionflow/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	reply string
	err   error
	seen  string
}

func (p *fakeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	p.seen = user
	return p.reply, p.err
}

type fakeForwarder struct {
	reply   string
	err     error
	url     string
	payload string
	calls   int
}

func (f *fakeForwarder) SendText(ctx context.Context, url, text string) (string, error) {
	f.calls++
	f.url = url
	f.payload = text
	return f.reply, f.err
}

func planContext(text string) types.ExecutionContext {
	return types.ExecutionContext{
		TaskID:    "task-1",
		ContextID: "ctx-1",
		UserMessage: types.Message{
			Kind:  "message",
			Role:  "user",
			Parts: []types.Part{{Kind: "text", Text: text}},
		},
	}
}

const validPlanJSON = `{
  "plan": {
    "overview": "Reorganize the workshop",
    "steps": [
      {"step": "Empty shelves", "timeline": "1 day", "resources": ["boxes"], "notes": "label everything"},
      {"step": "Rebuild layout", "timeline": "2 days", "resources": ["shelving", "helper"], "notes": ""}
    ],
    "estimated_duration": "3 days",
    "estimated_cost": "$200",
    "needs_execution": false,
    "execution_tasks": []
  }
}`

func TestPlanAgentProducesPlan(t *testing.T) {
	provider := &fakeProvider{reply: validPlanJSON}
	agent := NewPlanAgent(provider, nil, "http://localhost:10003", nil)

	result, err := agent.Execute(context.Background(), planContext("reorganize my workshop"))
	require.NoError(t, err)

	assert.Equal(t, "reorganize my workshop", provider.seen)
	assert.Equal(t, "agent", result.Reply.Role)
	assert.Equal(t, "task-1", result.Reply.TaskID)
	require.Len(t, result.Reply.Parts, 2)
	assert.Contains(t, result.Reply.Parts[0].Text, "Reorganize the workshop")
	assert.Contains(t, result.Reply.Parts[0].Text, "1. Empty shelves")
	assert.Contains(t, result.Reply.Parts[1].Text, "ready for your review")

	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, "plan", result.Artifacts[0].Name)
	require.Len(t, result.Artifacts[0].Parts, 1)
	assert.Equal(t, "data", result.Artifacts[0].Parts[0].Kind)
}

func TestPlanAgentForwardsExecution(t *testing.T) {
	reply := strings.Replace(validPlanJSON, `"needs_execution": false`, `"needs_execution": true`, 1)
	reply = strings.Replace(reply, `"execution_tasks": []`, `"execution_tasks": ["order shelving"]`, 1)
	provider := &fakeProvider{reply: reply}
	forwarder := &fakeForwarder{reply: "Execution scheduled."}
	agent := NewPlanAgent(provider, forwarder, "http://localhost:10003", nil)

	result, err := agent.Execute(context.Background(), planContext("reorganize my workshop"))
	require.NoError(t, err)

	assert.Equal(t, 1, forwarder.calls)
	assert.Equal(t, "http://localhost:10003", forwarder.url)
	assert.Contains(t, forwarder.payload, "order shelving")

	require.Len(t, result.Reply.Parts, 3)
	assert.Contains(t, result.Reply.Parts[1].Text, "Forwarding to Task Executor")
	assert.Equal(t, "Execution scheduled.", result.Reply.Parts[2].Text)
}

func TestPlanAgentForwardingFailureKeepsPlan(t *testing.T) {
	reply := strings.Replace(validPlanJSON, `"needs_execution": false`, `"needs_execution": true`, 1)
	provider := &fakeProvider{reply: reply}
	forwarder := &fakeForwarder{err: errors.New("connection refused")}
	agent := NewPlanAgent(provider, forwarder, "http://localhost:10003", nil)

	result, err := agent.Execute(context.Background(), planContext("reorganize my workshop"))
	require.NoError(t, err)

	require.Len(t, result.Reply.Parts, 3)
	assert.Equal(t, "No response received from the execution agent.", result.Reply.Parts[2].Text)
}

func TestPlanAgentDegradedWithoutProvider(t *testing.T) {
	agent := NewPlanAgent(nil, nil, "http://localhost:10003", nil)

	result, err := agent.Execute(context.Background(), planContext("anything"))
	require.NoError(t, err)

	require.Len(t, result.Reply.Parts, 1)
	assert.Equal(t, fallbackResponse, result.Reply.Parts[0].Text)
	assert.Equal(t, true, result.Reply.Metadata["degraded"])
	assert.Empty(t, result.Artifacts)
}

func TestPlanAgentRejectsNonJSON(t *testing.T) {
	provider := &fakeProvider{reply: "Sure! Here is my plan: first we do things."}
	agent := NewPlanAgent(provider, nil, "http://localhost:10003", nil)

	_, err := agent.Execute(context.Background(), planContext("reorganize my workshop"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating plan")
}

func TestPlanAgentProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	agent := NewPlanAgent(provider, nil, "http://localhost:10003", nil)

	_, err := agent.Execute(context.Background(), planContext("reorganize my workshop"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan generation failed")
}

func TestPlanAgentEmptyMessage(t *testing.T) {
	agent := NewPlanAgent(&fakeProvider{reply: validPlanJSON}, nil, "", nil)

	_, err := agent.Execute(context.Background(), planContext(""))
	require.Error(t, err)
}

func TestParsePlanDocument(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		doc, err := parsePlanDocument(validPlanJSON)
		require.NoError(t, err)
		assert.Equal(t, "Reorganize the workshop", doc.Plan.Overview)
		assert.Len(t, doc.Plan.Steps, 2)
	})

	t.Run("fenced json", func(t *testing.T) {
		doc, err := parsePlanDocument("```json\n" + validPlanJSON + "\n```")
		require.NoError(t, err)
		assert.Equal(t, "Reorganize the workshop", doc.Plan.Overview)
	})

	t.Run("repairable json", func(t *testing.T) {
		// Trailing comma, a classic model slip.
		broken := `{"plan": {"overview": "Fix the fence", "steps": [], "needs_execution": false,}}`
		doc, err := parsePlanDocument(broken)
		require.NoError(t, err)
		assert.Equal(t, "Fix the fence", doc.Plan.Overview)
	})

	t.Run("empty plan", func(t *testing.T) {
		_, err := parsePlanDocument(`{"plan": {}}`)
		require.Error(t, err)
	})

	t.Run("not json at all", func(t *testing.T) {
		_, err := parsePlanDocument("I cannot help with that.")
		require.Error(t, err)
	})
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}

func TestFormatPlan(t *testing.T) {
	plan := types.Plan{
		Overview:          "Move offices",
		EstimatedDuration: "1 week",
		EstimatedCost:     "$5000",
		Steps: []types.PlanStep{
			{Step: "Pack", Timeline: "2 days", Resources: []string{"boxes", "tape"}, Notes: "fragile items first"},
		},
	}
	out := formatPlan(plan)
	assert.Contains(t, out, "Move offices")
	assert.Contains(t, out, "Estimated Duration: 1 week")
	assert.Contains(t, out, "1. Pack")
	assert.Contains(t, out, "Resources: boxes, tape")
	assert.Contains(t, out, "Note: fragile items first")
}
